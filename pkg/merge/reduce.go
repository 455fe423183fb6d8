package merge

import (
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// MergeMultiple folds an ordered list of records into one by repeated pairwise
// merges: records[0] is the initial target and each later record is merged
// into the running result as the source. Conflicts, warnings, errors, and
// stats accumulate across steps; Succeeded is the conjunction of every step.
//
// A single record is passed through untouched: its services are counted in
// TotalSourceServices but nothing is added, updated, skipped, or conflicted.
// An empty list is the one structural failure the engine reports.
func MergeMultiple(
	records []*configtypes.ConfigurationRecord,
	opts MergeOptions,
) (*MergeResult, error) {
	if len(records) == 0 {
		return nil, errors.WithStack(ErrNoRecords)
	}

	if len(records) == 1 {
		record := records[0].Clone()
		if record.Services == nil {
			record.Services = make(map[string]*configtypes.ServiceDescriptor)
		}

		return &MergeResult{
			Succeeded: true,
			Merged:    record,
			Stats: MergeStats{
				TotalSourceServices: len(record.Services),
			},
		}, nil
	}

	result := &MergeResult{Succeeded: true}
	current := records[0]

	for _, record := range records[1:] {
		step, err := MergeConfigs(record, current, opts)
		if err != nil {
			return nil, errors.Wrap(err, "merging record sequence")
		}

		result.Conflicts = append(result.Conflicts, step.Conflicts...)
		result.Warnings = append(result.Warnings, step.Warnings...)
		result.Errors = append(result.Errors, step.Errors...)
		result.Stats.add(step.Stats)
		result.Succeeded = result.Succeeded && step.Succeeded

		// A step without a merged record keeps the previous fold value.
		if step.Merged != nil {
			current = step.Merged
		}
	}

	result.Merged = current.Clone()

	return result, nil
}
