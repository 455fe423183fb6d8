package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

func TestMergeDescriptorsFieldOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source *configtypes.ServiceDescriptor
		target *configtypes.ServiceDescriptor
		want   *configtypes.ServiceDescriptor
	}{
		{
			name:   "absent source fields keep target values",
			source: &configtypes.ServiceDescriptor{Command: "node"},
			target: &configtypes.ServiceDescriptor{
				Command:          "node",
				Args:             []string{"old"},
				WorkingDirectory: "/srv",
				TimeoutMillis:    2500,
			},
			want: &configtypes.ServiceDescriptor{
				Command:          "node",
				Args:             []string{"old"},
				WorkingDirectory: "/srv",
				TimeoutMillis:    2500,
			},
		},
		{
			name: "present source fields win",
			source: &configtypes.ServiceDescriptor{
				Command:          "deno",
				Args:             []string{"new"},
				WorkingDirectory: "/opt",
				TimeoutMillis:    100,
			},
			target: &configtypes.ServiceDescriptor{
				Command:          "node",
				Args:             []string{"old"},
				WorkingDirectory: "/srv",
				TimeoutMillis:    2500,
			},
			want: &configtypes.ServiceDescriptor{
				Command:          "deno",
				Args:             []string{"new"},
				WorkingDirectory: "/opt",
				TimeoutMillis:    100,
			},
		},
		{
			name:   "empty source args list still overrides",
			source: &configtypes.ServiceDescriptor{Command: "node", Args: []string{}},
			target: &configtypes.ServiceDescriptor{Command: "node", Args: []string{"old"}},
			want:   &configtypes.ServiceDescriptor{Command: "node", Args: []string{}},
		},
		{
			name:   "disabled follows the source",
			source: &configtypes.ServiceDescriptor{Command: "node"},
			target: &configtypes.ServiceDescriptor{Command: "node", Disabled: true},
			want:   &configtypes.ServiceDescriptor{Command: "node"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := mergeDescriptors(tt.source, tt.target, false)
			if err != nil {
				t.Fatalf("mergeDescriptors() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mergeDescriptors() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target map[string]string
		source map[string]string
		want   map[string]string
	}{
		{name: "both empty stays absent", target: nil, source: nil, want: nil},
		{
			name:   "source keys take precedence",
			target: map[string]string{"K": "t", "T": "1"},
			source: map[string]string{"K": "s", "S": "2"},
			want:   map[string]string{"K": "s", "T": "1", "S": "2"},
		},
		{
			name:   "target only",
			target: map[string]string{"K": "t"},
			source: nil,
			want:   map[string]string{"K": "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mergeEnv(tt.target, tt.source)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mergeEnv() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeServiceOutcomeIsTagged(t *testing.T) {
	t.Parallel()

	source := &configtypes.ServiceDescriptor{Command: "a"}
	target := &configtypes.ServiceDescriptor{Command: "b"}

	outcome, err := mergeService("svc", source, target, MergeOptions{
		Strategy: configtypes.StrategyDefer,
	})
	if err != nil {
		t.Fatalf("mergeService() error = %v", err)
	}

	if outcome.action != actionDefer {
		t.Errorf("action = %v, want defer", outcome.action)
	}

	if outcome.descriptor != nil {
		t.Error("a deferred outcome must not carry a descriptor")
	}

	if outcome.conflict == nil {
		t.Fatal("a deferred outcome must carry the conflict")
	}

	outcome, err = mergeService("svc", source, nil, MergeOptions{
		Strategy: configtypes.StrategyDefer,
	})
	if err != nil {
		t.Fatalf("mergeService() error = %v", err)
	}

	if outcome.action != actionAdd || outcome.descriptor == nil || outcome.conflict != nil {
		t.Errorf("add outcome malformed: %+v", outcome)
	}
}

func TestCombineMetadataSourceWinsFieldWise(t *testing.T) {
	t.Parallel()

	target := &configtypes.ServiceMetadata{
		Source:      "machine-a",
		Description: "kept from target",
		Tags:        []string{"old"},
	}
	source := &configtypes.ServiceMetadata{
		Source: "machine-b",
		Tags:   []string{"new"},
	}

	got, err := combineMetadata(target, source)
	if err != nil {
		t.Fatalf("combineMetadata() error = %v", err)
	}

	want := &configtypes.ServiceMetadata{
		Source:      "machine-b",
		Description: "kept from target",
		Tags:        []string{"new"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("combineMetadata() mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineMetadataNilSides(t *testing.T) {
	t.Parallel()

	if got, err := combineMetadata[configtypes.ServiceMetadata](nil, nil); err != nil || got != nil {
		t.Errorf("combineMetadata(nil, nil) = (%v, %v), want (nil, nil)", got, err)
	}

	source := &configtypes.ServiceMetadata{Source: "only"}

	got, err := combineMetadata(nil, source)
	if err != nil {
		t.Fatalf("combineMetadata() error = %v", err)
	}

	if got.Source != "only" {
		t.Errorf("source-only combine = %+v", got)
	}
}
