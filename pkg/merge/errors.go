package merge

import "github.com/cockroachdb/errors"

var (
	// ErrNoRecords indicates the reducer was invoked without any input records
	ErrNoRecords = errors.New("at least one configuration record is required")
	// ErrUnknownStrategy indicates an unknown merge strategy was specified
	ErrUnknownStrategy = errors.New("unknown merge strategy")
	// ErrMetadataMerge indicates a failure while combining metadata objects
	ErrMetadataMerge = errors.New("failed to merge metadata")
)
