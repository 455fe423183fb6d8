package merge

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// Validator checks a merged record against schema rules. Implemented outside
// this package; the merger only consumes the interface.
type Validator interface {
	Validate(record *configtypes.ConfigurationRecord) ValidationReport
}

// ValidationReport is the outcome of validating a configuration record.
type ValidationReport struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// MergeOptions configures a merge invocation.
type MergeOptions struct {
	// Strategy selects conflict resolution. Empty defaults to defer.
	Strategy configtypes.MergeStrategy
	// PreserveMetadata combines record and service metadata from both sides
	// instead of taking the source's metadata wholesale.
	PreserveMetadata bool
	// ValidateResult runs Validator over the merged record and folds its
	// findings into the result.
	ValidateResult bool
	// Validator is the external schema validator consulted when
	// ValidateResult is set.
	Validator Validator
}

// MergeStats counts what happened to the source's services during one
// pairwise merge. TotalSourceServices always equals
// Added + Updated + Skipped + Conflicted.
type MergeStats struct {
	TotalSourceServices int `json:"totalSourceServices" yaml:"totalSourceServices"`
	Added               int `json:"added"               yaml:"added"`
	Updated             int `json:"updated"             yaml:"updated"`
	Skipped             int `json:"skipped"             yaml:"skipped"`
	Conflicted          int `json:"conflicted"          yaml:"conflicted"`
}

// add accumulates another step's stats field-wise.
func (s *MergeStats) add(other MergeStats) {
	s.TotalSourceServices += other.TotalSourceServices
	s.Added += other.Added
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Conflicted += other.Conflicted
}

// MergeResult reports everything a merge did. Conflicts are first-class data
// here, never errors: the merge always completes and Merged is usable even
// when conflicts were deferred.
type MergeResult struct {
	Succeeded bool                              `json:"succeeded" yaml:"succeeded"`
	Merged    *configtypes.ConfigurationRecord  `json:"merged,omitempty" yaml:"merged,omitempty"`
	Conflicts []Conflict                        `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Errors    []string                          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings  []string                          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats     MergeStats                        `json:"stats" yaml:"stats"`
}

// MergeConfigs merges source into target and returns a fresh result; neither
// input is mutated. Services present only in source are added unconditionally.
// Services present in both are field-wise merged when compatible, and
// otherwise resolved per opts.Strategy. The record version is arbitrated with
// CompareVersions and record metadata is combined when opts.PreserveMetadata
// is set.
//
// The only hard failure is an unknown strategy. Validation findings, when
// requested, land in Errors/Warnings and flip Succeeded rather than aborting.
func MergeConfigs(
	source, target *configtypes.ConfigurationRecord,
	opts MergeOptions,
) (*MergeResult, error) {
	if opts.Strategy == "" {
		opts.Strategy = configtypes.StrategyDefer
	}

	if !opts.Strategy.Valid() {
		return nil, errors.Wrapf(ErrUnknownStrategy, "strategy: %q", opts.Strategy)
	}

	merged := &configtypes.ConfigurationRecord{
		Services: make(map[string]*configtypes.ServiceDescriptor),
	}

	if target != nil {
		for name, svc := range target.Services {
			merged.Services[name] = svc.Clone()
		}

		merged.Version = target.Version
		merged.Metadata = target.Metadata.Clone()
	}

	result := &MergeResult{Succeeded: true}

	if source != nil {
		if err := applySource(merged, source, opts, result); err != nil {
			return nil, err
		}
	}

	if opts.ValidateResult {
		validateMerged(merged, opts, result)
	}

	result.Merged = merged
	result.Succeeded = len(result.Errors) == 0

	return result, nil
}

// applySource reconciles record-level version and metadata, then folds every
// source service into the working record.
func applySource(
	merged, source *configtypes.ConfigurationRecord,
	opts MergeOptions,
	result *MergeResult,
) error {
	if source.Version != "" &&
		(merged.Version == "" || CompareVersions(source.Version, merged.Version) > 0) {
		merged.Version = source.Version
	}

	if opts.PreserveMetadata && (merged.Metadata != nil || source.Metadata != nil) {
		metadata, err := combineMetadata(merged.Metadata, source.Metadata)
		if err != nil {
			return err
		}

		metadata.LastModifiedEpochMillis = time.Now().UnixMilli()
		merged.Metadata = metadata
	}

	result.Stats.TotalSourceServices = len(source.Services)

	for _, name := range sortedServiceNames(source) {
		outcome, err := mergeService(name, source.Services[name], merged.Services[name], opts)
		if err != nil {
			return err
		}

		result.Warnings = append(result.Warnings, outcome.warnings...)

		switch outcome.action {
		case actionAdd:
			merged.Services[name] = outcome.descriptor
			result.Stats.Added++
		case actionUpdate:
			merged.Services[name] = outcome.descriptor
			result.Stats.Updated++
		case actionSkip:
			result.Stats.Skipped++
		case actionDefer:
			result.Conflicts = append(result.Conflicts, *outcome.conflict)
			result.Stats.Conflicted++
		}
	}

	return nil
}

// validateMerged runs the external validator, if any, over the merged record.
func validateMerged(
	merged *configtypes.ConfigurationRecord,
	opts MergeOptions,
	result *MergeResult,
) {
	if opts.Validator == nil {
		result.Warnings = append(
			result.Warnings,
			"validation requested but no validator configured",
		)

		return
	}

	report := opts.Validator.Validate(merged)
	result.Errors = append(result.Errors, report.Errors...)
	result.Warnings = append(result.Warnings, report.Warnings...)

	if !report.Valid && len(report.Errors) == 0 {
		result.Errors = append(result.Errors, "merged record failed validation")
	}
}

// String renders the stats identity for logs and summaries.
func (s MergeStats) String() string {
	return fmt.Sprintf(
		"total=%d added=%d updated=%d skipped=%d conflicted=%d",
		s.TotalSourceServices, s.Added, s.Updated, s.Skipped, s.Conflicted,
	)
}
