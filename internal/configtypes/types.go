//nolint:golines // Config structs have jsonschema tags that exceed line length limits
package configtypes

import "maps"

// MergeStrategy selects how conflicting service entries are resolved during a merge.
type MergeStrategy string

const (
	// StrategyOverwrite replaces the target entry with the source entry on conflict.
	StrategyOverwrite MergeStrategy = "overwrite"
	// StrategySkip keeps the target entry unchanged on conflict.
	StrategySkip MergeStrategy = "skip"
	// StrategyMerge forces a field-wise merge of both entries on conflict. May be lossy.
	StrategyMerge MergeStrategy = "merge"
	// StrategyDefer keeps the target entry and surfaces the conflict to the caller
	// for an explicit resolution. This is the default strategy.
	StrategyDefer MergeStrategy = "defer"
)

// Valid reports whether the strategy is one of the known values.
func (s MergeStrategy) Valid() bool {
	switch s {
	case StrategyOverwrite, StrategySkip, StrategyMerge, StrategyDefer:
		return true
	default:
		return false
	}
}

// ConflictKind classifies a detected conflict.
//
// Automatic detection only ever produces ConflictDifferingConfig; the remaining
// kinds exist for manual annotation in review tooling and are never inferred.
type ConflictKind string

const (
	// ConflictDifferingConfig indicates two entries for the same service name
	// disagree on one or more merge-relevant fields.
	ConflictDifferingConfig ConflictKind = "differing-config"
	// ConflictDuplicate marks an exact duplicate name with distinct identities (manual use).
	ConflictDuplicate ConflictKind = "duplicate"
	// ConflictVersionMismatch marks entries that differ only by declared version (manual use).
	ConflictVersionMismatch ConflictKind = "version-mismatch"
	// ConflictMissingDependency marks an entry whose dependency is absent (manual use).
	ConflictMissingDependency ConflictKind = "missing-dependency"
)

// ServiceDescriptor describes one launchable external process.
type ServiceDescriptor struct {
	// Executable or interpreter used to launch the service
	Command string `json:"command" jsonschema:"minLength=1,required" yaml:"command"`
	// Positional command-line arguments, in launch order
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
	// Environment variables set for the launched process
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	// When true the service is kept in the record but not launched
	Disabled bool `json:"disabled,omitempty" jsonschema:"default=false" yaml:"disabled,omitempty"`
	// Directory the process is launched from
	WorkingDirectory string `json:"workingDirectory,omitempty" yaml:"workingDirectory,omitempty"`
	// Startup timeout in milliseconds. Zero means no explicit timeout
	TimeoutMillis int64 `json:"timeoutMillis,omitempty" jsonschema:"minimum=0" yaml:"timeoutMillis,omitempty"`
	// Provenance and bookkeeping. Never considered by merge equality
	Metadata *ServiceMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ServiceMetadata carries provenance information for a single service entry.
type ServiceMetadata struct {
	// Origin of this entry, e.g. a tool name or file path
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Free-form description of what the service does
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Declared version of the service configuration
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Unix epoch milliseconds of the last modification
	LastModifiedEpochMillis int64 `json:"lastModifiedEpochMillis,omitempty" yaml:"lastModifiedEpochMillis,omitempty"`
	// Labels for grouping and filtering
	Tags []string `json:"tags,omitempty" jsonschema:"uniqueItems=true" yaml:"tags,omitempty"`
}

// ConfigurationRecord is the root unit being merged: the full set of service
// descriptors plus record-level versioning and metadata, as persisted.
type ConfigurationRecord struct {
	// Managed services keyed by service name
	Services map[string]*ServiceDescriptor `json:"services" yaml:"services"`
	// Record version using the dotted-numeric convention, e.g. "1.2.0"
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Record-level bookkeeping
	Metadata *RecordMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RecordMetadata carries bookkeeping for a whole configuration record.
type RecordMetadata struct {
	// Tool or user that created the record
	CreatedBy string `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	// Unix epoch milliseconds of record creation
	CreatedAtEpochMillis int64 `json:"createdAtEpochMillis,omitempty" yaml:"createdAtEpochMillis,omitempty"`
	// Unix epoch milliseconds of the last modification
	LastModifiedEpochMillis int64 `json:"lastModifiedEpochMillis,omitempty" yaml:"lastModifiedEpochMillis,omitempty"`
	// Metadata schema version
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Content checksum as computed by the writing tool
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// Clone returns a deep copy of the descriptor. Args, Env, and Metadata are
// copied so the clone shares no mutable state with the original.
func (d *ServiceDescriptor) Clone() *ServiceDescriptor {
	if d == nil {
		return nil
	}

	clone := *d

	if d.Args != nil {
		clone.Args = append([]string{}, d.Args...)
	}

	if d.Env != nil {
		clone.Env = maps.Clone(d.Env)
	}

	clone.Metadata = d.Metadata.Clone()

	return &clone
}

// Clone returns a deep copy of the service metadata.
func (m *ServiceMetadata) Clone() *ServiceMetadata {
	if m == nil {
		return nil
	}

	clone := *m

	if m.Tags != nil {
		clone.Tags = append([]string{}, m.Tags...)
	}

	return &clone
}

// Clone returns a deep copy of the record, including every descriptor.
func (r *ConfigurationRecord) Clone() *ConfigurationRecord {
	if r == nil {
		return nil
	}

	clone := &ConfigurationRecord{
		Version:  r.Version,
		Metadata: r.Metadata.Clone(),
	}

	if r.Services != nil {
		clone.Services = make(map[string]*ServiceDescriptor, len(r.Services))
		for name, svc := range r.Services {
			clone.Services[name] = svc.Clone()
		}
	}

	return clone
}

// Clone returns a copy of the record metadata.
func (m *RecordMetadata) Clone() *RecordMetadata {
	if m == nil {
		return nil
	}

	clone := *m

	return &clone
}
