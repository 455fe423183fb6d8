package merge

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/cockroachdb/errors"
	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// serviceAction is the decision taken for one service name.
type serviceAction int

const (
	// actionAdd inserts a service the target does not have.
	actionAdd serviceAction = iota
	// actionUpdate replaces the target entry with a merged or source descriptor.
	actionUpdate
	// actionSkip keeps the target entry unchanged.
	actionSkip
	// actionDefer keeps the target entry and carries the conflict to the caller.
	actionDefer
)

// serviceOutcome is the tagged result of merging one service name. Exactly one
// of descriptor (add/update) or conflict (defer) is set; skip carries neither.
type serviceOutcome struct {
	action     serviceAction
	descriptor *configtypes.ServiceDescriptor
	conflict   *Conflict
	warnings   []string
}

// mergeService decides what happens to a single service name: add when the
// target has no entry, field-wise update when the entries are compatible, and
// otherwise whatever the active strategy dictates.
func mergeService(
	name string,
	source, target *configtypes.ServiceDescriptor,
	opts MergeOptions,
) (*serviceOutcome, error) {
	if target == nil {
		return &serviceOutcome{action: actionAdd, descriptor: source.Clone()}, nil
	}

	conflict := detectConflict(name, source, target)
	if conflict == nil {
		merged, err := mergeDescriptors(source, target, opts.PreserveMetadata)
		if err != nil {
			return nil, errors.Wrapf(err, "merging service %q", name)
		}

		return &serviceOutcome{action: actionUpdate, descriptor: merged}, nil
	}

	switch opts.Strategy {
	case configtypes.StrategyOverwrite:
		return &serviceOutcome{
			action:     actionUpdate,
			descriptor: source.Clone(),
			warnings: []string{
				fmt.Sprintf("service %q overwritten by source (fields: %s)",
					name, strings.Join(conflict.Fields, ", ")),
			},
		}, nil

	case configtypes.StrategySkip:
		return &serviceOutcome{
			action: actionSkip,
			warnings: []string{
				fmt.Sprintf("service %q skipped, target entry kept (fields: %s)",
					name, strings.Join(conflict.Fields, ", ")),
			},
		}, nil

	case configtypes.StrategyMerge:
		merged, err := mergeDescriptors(source, target, opts.PreserveMetadata)
		if err != nil {
			return nil, errors.Wrapf(err, "force-merging service %q", name)
		}

		return &serviceOutcome{
			action:     actionUpdate,
			descriptor: merged,
			warnings: []string{
				fmt.Sprintf("service %q force-merged, result may be lossy (fields: %s)",
					name, strings.Join(conflict.Fields, ", ")),
			},
		}, nil

	case configtypes.StrategyDefer:
		return &serviceOutcome{action: actionDefer, conflict: conflict}, nil

	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "strategy: %q", opts.Strategy)
	}
}

// mergeDescriptors builds a new descriptor from the target overridden by every
// present source field. Env is merged key-wise as the union of both maps with
// source keys taking precedence. Disabled always follows the source.
func mergeDescriptors(
	source, target *configtypes.ServiceDescriptor,
	preserveMetadata bool,
) (*configtypes.ServiceDescriptor, error) {
	merged := target.Clone()

	if source.Command != "" {
		merged.Command = source.Command
	}

	if source.Args != nil {
		merged.Args = append([]string{}, source.Args...)
	}

	merged.Env = mergeEnv(target.Env, source.Env)
	merged.Disabled = source.Disabled

	if source.WorkingDirectory != "" {
		merged.WorkingDirectory = source.WorkingDirectory
	}

	if source.TimeoutMillis != 0 {
		merged.TimeoutMillis = source.TimeoutMillis
	}

	if preserveMetadata {
		metadata, err := combineMetadata(target.Metadata, source.Metadata)
		if err != nil {
			return nil, err
		}

		merged.Metadata = metadata
	} else {
		merged.Metadata = source.Metadata.Clone()
	}

	return merged, nil
}

// mergeEnv unions two environment maps with source keys winning. Returns nil
// when both inputs are empty so absent env stays absent in the output.
func mergeEnv(target, source map[string]string) map[string]string {
	if len(target) == 0 && len(source) == 0 {
		return nil
	}

	merged := make(map[string]string, len(target)+len(source))
	maps.Copy(merged, target)
	maps.Copy(merged, source)

	return merged
}

// combineMetadata merges two metadata objects with RFC 7396 merge-patch
// semantics: source fields win key by key, absent source fields keep the
// target value.
func combineMetadata[T any](target, source *T) (*T, error) {
	if target == nil && source == nil {
		return nil, nil
	}

	if target == nil {
		target = new(T)
	}

	if source == nil {
		source = new(T)
	}

	targetJSON, err := json.Marshal(target)
	if err != nil {
		return nil, errors.Wrap(ErrMetadataMerge, "marshaling target metadata")
	}

	sourceJSON, err := json.Marshal(source)
	if err != nil {
		return nil, errors.Wrap(ErrMetadataMerge, "marshaling source metadata")
	}

	mergedJSON, err := jsonpatch.MergePatch(targetJSON, sourceJSON)
	if err != nil {
		return nil, errors.Wrap(ErrMetadataMerge, "applying merge patch")
	}

	result := new(T)
	if err := json.Unmarshal(mergedJSON, result); err != nil {
		return nil, errors.Wrap(ErrMetadataMerge, "unmarshaling merged metadata")
	}

	return result, nil
}
