package merge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// Field names a conflict can implicate, in reporting order.
const (
	FieldCommand  = "command"
	FieldArgs     = "args"
	FieldEnv      = "env"
	FieldDisabled = "disabled"
)

// Conflict is a detected disagreement between two descriptors sharing the same
// service name. Both descriptors are retained verbatim so callers can present
// them side by side and supply an explicit resolution.
type Conflict struct {
	// ID uniquely identifies this detection
	ID string `json:"id" yaml:"id"`
	// Kind classifies the conflict. Detection always emits differing-config;
	// the richer kinds are reserved for manual annotation.
	Kind configtypes.ConflictKind `json:"kind" yaml:"kind"`
	// ServiceName is the shared name both descriptors claim
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	// Fields lists the merge-relevant fields the descriptors disagree on
	Fields []string `json:"conflictingFields" yaml:"conflictingFields"`
	// Source and Target are deep copies of the two descriptors
	Source *configtypes.ServiceDescriptor `json:"sourceValue" yaml:"sourceValue"`
	Target *configtypes.ServiceDescriptor `json:"targetValue" yaml:"targetValue"`
	// Description is a human-readable summary of the disagreement
	Description string `json:"description" yaml:"description"`
}

// Detail renders a field-by-field diff of the two descriptors (target as the
// baseline, source as the proposed change) for interactive review.
func (c *Conflict) Detail() string {
	return cmp.Diff(c.Target, c.Source)
}

// detectConflict compares two descriptors for the same service name and
// returns a Conflict naming the differing fields, or nil if the descriptors
// are merge-compatible.
func detectConflict(name string, source, target *configtypes.ServiceDescriptor) *Conflict {
	var fields []string

	if source.Command != target.Command {
		fields = append(fields, FieldCommand)
	}

	if !ArgsEqual(source.Args, target.Args) {
		fields = append(fields, FieldArgs)
	}

	if !EnvEqual(source.Env, target.Env) {
		fields = append(fields, FieldEnv)
	}

	if source.Disabled != target.Disabled {
		fields = append(fields, FieldDisabled)
	}

	if len(fields) == 0 {
		return nil
	}

	return &Conflict{
		ID:          uuid.NewString(),
		Kind:        configtypes.ConflictDifferingConfig,
		ServiceName: name,
		Fields:      fields,
		Source:      source.Clone(),
		Target:      target.Clone(),
		Description: fmt.Sprintf(
			"service %q has differing configuration: %s",
			name,
			strings.Join(fields, ", "),
		),
	}
}

// DetectConflicts runs the conflict detector over every service name present
// in both records without touching either one. Used for dry-run previews.
// Results are ordered by service name.
func DetectConflicts(source, target *configtypes.ConfigurationRecord) []Conflict {
	var conflicts []Conflict

	for _, name := range sortedServiceNames(source) {
		targetSvc, ok := serviceByName(target, name)
		if !ok {
			continue
		}

		if c := detectConflict(name, source.Services[name], targetSvc); c != nil {
			conflicts = append(conflicts, *c)
		}
	}

	return conflicts
}

// Differences partitions the union of service names from two records. The four
// lists are pairwise disjoint and together cover every distinct name.
type Differences struct {
	// OnlyInFirst lists services present only in the first record
	OnlyInFirst []string `json:"onlyInFirst" yaml:"onlyInFirst"`
	// OnlyInSecond lists services present only in the second record
	OnlyInSecond []string `json:"onlyInSecond" yaml:"onlyInSecond"`
	// Different lists services present in both with differing configuration
	Different []string `json:"different" yaml:"different"`
	// Identical lists services present in both with equal configuration
	Identical []string `json:"identical" yaml:"identical"`
}

// AnalyzeDifferences partitions the union of service names across both records
// into only-in-first, only-in-second, different, and identical. Each list is
// sorted by service name.
func AnalyzeDifferences(a, b *configtypes.ConfigurationRecord) *Differences {
	diff := &Differences{
		OnlyInFirst:  []string{},
		OnlyInSecond: []string{},
		Different:    []string{},
		Identical:    []string{},
	}

	for _, name := range sortedServiceNames(a) {
		svcB, ok := serviceByName(b, name)
		if !ok {
			diff.OnlyInFirst = append(diff.OnlyInFirst, name)

			continue
		}

		if DescriptorsEqual(a.Services[name], svcB) {
			diff.Identical = append(diff.Identical, name)
		} else {
			diff.Different = append(diff.Different, name)
		}
	}

	for _, name := range sortedServiceNames(b) {
		if _, ok := serviceByName(a, name); !ok {
			diff.OnlyInSecond = append(diff.OnlyInSecond, name)
		}
	}

	return diff
}

// sortedServiceNames returns the record's service names in lexicographic
// order, giving every merge and analysis a deterministic iteration order.
func sortedServiceNames(record *configtypes.ConfigurationRecord) []string {
	if record == nil || len(record.Services) == 0 {
		return nil
	}

	names := make([]string, 0, len(record.Services))
	for name := range record.Services {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func serviceByName(
	record *configtypes.ConfigurationRecord,
	name string,
) (*configtypes.ServiceDescriptor, bool) {
	if record == nil || record.Services == nil {
		return nil, false
	}

	svc, ok := record.Services[name]

	return svc, ok
}
