package merge_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
	"github.com/smykla-skalski/svcsync/pkg/merge"
)

func TestMergeMultipleNoRecords(t *testing.T) {
	t.Parallel()

	_, err := merge.MergeMultiple(nil, merge.MergeOptions{})
	if !errors.Is(err, merge.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestMergeMultipleSingleRecordPassThrough(t *testing.T) {
	t.Parallel()

	only := &configtypes.ConfigurationRecord{
		Version: "1.0.0",
		Services: map[string]*configtypes.ServiceDescriptor{
			"a": {Command: "x"},
			"b": {Command: "y"},
		},
	}

	result, err := merge.MergeMultiple([]*configtypes.ConfigurationRecord{only}, merge.MergeOptions{})
	if err != nil {
		t.Fatalf("MergeMultiple() error = %v", err)
	}

	if !result.Succeeded {
		t.Error("pass-through must succeed")
	}

	if diff := cmp.Diff(only, result.Merged); diff != "" {
		t.Errorf("pass-through changed the record (-want +got):\n%s", diff)
	}

	want := merge.MergeStats{TotalSourceServices: 2}
	if result.Stats != want {
		t.Errorf("stats = %s, want %s", result.Stats.String(), want.String())
	}

	// Pass-through still returns a copy, never the caller's record.
	result.Merged.Services["a"].Command = "mutated"

	if only.Services["a"].Command != "x" {
		t.Error("pass-through aliased the input record")
	}
}

func TestMergeMultipleFoldsLeftToRight(t *testing.T) {
	t.Parallel()

	records := []*configtypes.ConfigurationRecord{
		{
			Version: "1.0.0",
			Services: map[string]*configtypes.ServiceDescriptor{
				"base": {Command: "one"},
				"svc":  {Command: "node", Args: []string{"v1"}},
			},
		},
		{
			Version: "1.2.0",
			Services: map[string]*configtypes.ServiceDescriptor{
				"svc":   {Command: "node", Args: []string{"v2"}},
				"extra": {Command: "two"},
			},
		},
		{
			Services: map[string]*configtypes.ServiceDescriptor{
				"svc": {Command: "node", Args: []string{"v3"}},
			},
		},
	}

	result, err := merge.MergeMultiple(records, merge.MergeOptions{
		Strategy: configtypes.StrategyOverwrite,
	})
	if err != nil {
		t.Fatalf("MergeMultiple() error = %v", err)
	}

	if !result.Succeeded {
		t.Errorf("fold should succeed, errors: %v", result.Errors)
	}

	// Later records win under overwrite, earlier services survive.
	if got := result.Merged.Services["svc"].Args; !merge.ArgsEqual(got, []string{"v3"}) {
		t.Errorf("svc args = %v, want the last record's", got)
	}

	for _, name := range []string{"base", "extra", "svc"} {
		if _, ok := result.Merged.Services[name]; !ok {
			t.Errorf("service %q missing from fold result", name)
		}
	}

	if result.Merged.Version != "1.2.0" {
		t.Errorf("version = %q, want the highest seen", result.Merged.Version)
	}

	// Two pairwise steps, each with one source service plus the conflicting one.
	want := merge.MergeStats{TotalSourceServices: 3, Added: 1, Updated: 2}
	if result.Stats != want {
		t.Errorf("stats = %s, want %s", result.Stats.String(), want.String())
	}

	// Each overwrite emitted a warning naming the service.
	if len(result.Warnings) != 2 {
		t.Errorf("got %d warnings (%v), want 2", len(result.Warnings), result.Warnings)
	}
}

func TestMergeMultipleAccumulatesConflicts(t *testing.T) {
	t.Parallel()

	records := []*configtypes.ConfigurationRecord{
		{Services: map[string]*configtypes.ServiceDescriptor{"svc": {Command: "a"}}},
		{Services: map[string]*configtypes.ServiceDescriptor{"svc": {Command: "b"}}},
		{Services: map[string]*configtypes.ServiceDescriptor{"svc": {Command: "c"}}},
	}

	result, err := merge.MergeMultiple(records, merge.MergeOptions{
		Strategy: configtypes.StrategyDefer,
	})
	if err != nil {
		t.Fatalf("MergeMultiple() error = %v", err)
	}

	if len(result.Conflicts) != 2 {
		t.Errorf("got %d conflicts, want one per conflicting step", len(result.Conflicts))
	}

	// Deferred conflicts keep the fold's first value throughout.
	if got := result.Merged.Services["svc"].Command; got != "a" {
		t.Errorf("svc command = %q, want the original %q", got, "a")
	}

	if result.Stats.Conflicted != 2 {
		t.Errorf("conflicted = %d, want 2", result.Stats.Conflicted)
	}
}

func TestMergeMultipleSucceededIsConjunction(t *testing.T) {
	t.Parallel()

	records := []*configtypes.ConfigurationRecord{
		{Services: map[string]*configtypes.ServiceDescriptor{"ok": {Command: "x"}}},
		{Services: map[string]*configtypes.ServiceDescriptor{"bad": {Command: ""}}},
	}

	result, err := merge.MergeMultiple(records, merge.MergeOptions{
		ValidateResult: true,
		Validator: stubValidator{report: merge.ValidationReport{
			Valid:  false,
			Errors: []string{"service \"bad\": command must not be empty"},
		}},
	})
	if err != nil {
		t.Fatalf("MergeMultiple() error = %v", err)
	}

	if result.Succeeded {
		t.Error("a failed step must fail the whole fold")
	}

	if result.Merged == nil {
		t.Error("the fold still returns the merged record for inspection")
	}
}
