// Package merge reconciles service-launcher configuration records: it detects
// field-level conflicts between service descriptors sharing a name, resolves
// them under a configurable strategy, and reports exactly what happened.
// Inputs are never mutated; every output is built from deep copies.
package merge

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// ArgsEqual reports whether two argument lists are equal. Nil and empty lists
// are interchangeable. Comparison is positional: reordered but semantically
// identical argument lists are treated as different.
func ArgsEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}

	return slices.Equal(a, b)
}

// EnvEqual reports whether two environment maps hold the same keys with equal
// values. Nil and empty maps are interchangeable.
func EnvEqual(a, b map[string]string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}

	return maps.Equal(a, b)
}

// DescriptorsEqual reports whether two descriptors agree on every
// merge-relevant field: command, args, env, and disabled. WorkingDirectory,
// TimeoutMillis, and Metadata are bookkeeping and never participate in
// equality or conflict detection.
func DescriptorsEqual(a, b *configtypes.ServiceDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Command == b.Command &&
		ArgsEqual(a.Args, b.Args) &&
		EnvEqual(a.Env, b.Env) &&
		a.Disabled == b.Disabled
}

// CompareVersions compares two dotted version strings segment by segment and
// returns -1, 0, or 1. Missing trailing segments are treated as "0", so
// "1.2" equals "1.2.0". Segments that both parse as non-negative integers
// compare numerically ("1.10" is newer than "1.2"); if either side of a
// segment pair is non-numeric, that pair compares lexicographically on the
// raw segment strings. Pre-release suffixes therefore sort lexicographically,
// not by SemVer precedence.
func CompareVersions(v1, v2 string) int {
	segs1 := strings.Split(v1, ".")
	segs2 := strings.Split(v2, ".")

	for i := range max(len(segs1), len(segs2)) {
		s1 := versionSegment(segs1, i)
		s2 := versionSegment(segs2, i)

		if c := compareSegments(s1, s2); c != 0 {
			return c
		}
	}

	return 0
}

// versionSegment returns the i-th segment, or "0" past the end.
func versionSegment(segs []string, i int) string {
	if i >= len(segs) {
		return "0"
	}

	return segs[i]
}

func compareSegments(s1, s2 string) int {
	n1, err1 := strconv.ParseUint(s1, 10, 64)
	n2, err2 := strconv.ParseUint(s2, 10, 64)

	if err1 == nil && err2 == nil {
		switch {
		case n1 < n2:
			return -1
		case n1 > n2:
			return 1
		default:
			return 0
		}
	}

	// Non-numeric segment on either side: fall back to lexicographic order.
	return strings.Compare(s1, s2)
}
