package configtypes_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

func TestMergeStrategyValid(t *testing.T) {
	t.Parallel()

	valid := []configtypes.MergeStrategy{
		configtypes.StrategyOverwrite,
		configtypes.StrategySkip,
		configtypes.StrategyMerge,
		configtypes.StrategyDefer,
	}

	for _, strategy := range valid {
		if !strategy.Valid() {
			t.Errorf("strategy %q should be valid", strategy)
		}
	}

	for _, strategy := range []configtypes.MergeStrategy{"", "prompt", "interactive"} {
		if strategy.Valid() {
			t.Errorf("strategy %q should be invalid", strategy)
		}
	}
}

func TestServiceDescriptorCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &configtypes.ServiceDescriptor{
		Command: "node",
		Args:    []string{"server.js"},
		Env:     map[string]string{"PORT": "8080"},
		Metadata: &configtypes.ServiceMetadata{
			Source: "laptop",
			Tags:   []string{"web"},
		},
	}

	clone := original.Clone()

	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone differs from original (-want +got):\n%s", diff)
	}

	clone.Args[0] = "mutated"
	clone.Env["PORT"] = "9090"
	clone.Metadata.Tags[0] = "mutated"
	clone.Metadata.Source = "elsewhere"

	if original.Args[0] != "server.js" {
		t.Error("clone shares the args slice")
	}

	if original.Env["PORT"] != "8080" {
		t.Error("clone shares the env map")
	}

	if original.Metadata.Tags[0] != "web" || original.Metadata.Source != "laptop" {
		t.Error("clone shares the metadata")
	}
}

func TestConfigurationRecordCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &configtypes.ConfigurationRecord{
		Version: "1.0.0",
		Services: map[string]*configtypes.ServiceDescriptor{
			"svc": {Command: "node", Env: map[string]string{"K": "v"}},
		},
		Metadata: &configtypes.RecordMetadata{CreatedBy: "tool"},
	}

	clone := original.Clone()

	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone differs from original (-want +got):\n%s", diff)
	}

	clone.Services["svc"].Env["K"] = "mutated"
	clone.Services["added"] = &configtypes.ServiceDescriptor{Command: "x"}
	clone.Metadata.CreatedBy = "other"

	if original.Services["svc"].Env["K"] != "v" {
		t.Error("clone shares descriptor state")
	}

	if _, ok := original.Services["added"]; ok {
		t.Error("clone shares the services map")
	}

	if original.Metadata.CreatedBy != "tool" {
		t.Error("clone shares the record metadata")
	}
}

func TestNilClones(t *testing.T) {
	t.Parallel()

	var (
		descriptor *configtypes.ServiceDescriptor
		record     *configtypes.ConfigurationRecord
		metadata   *configtypes.RecordMetadata
	)

	if descriptor.Clone() != nil || record.Clone() != nil || metadata.Clone() != nil {
		t.Error("nil receivers must clone to nil")
	}
}
