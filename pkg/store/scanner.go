package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
)

// Confidence score weights. A candidate starts from the parse succeeding and
// earns more for looking like a deliberately placed record.
const (
	scoreParsed       = 0.4
	scoreExactPattern = 0.3
	scoreHasServices  = 0.2
	scoreHasVersion   = 0.1
)

// Candidate is a configuration record found on disk, scored by how likely it
// is to be a real svcsync record rather than an unrelated config file.
type Candidate struct {
	Path       string
	Record     *configtypes.ConfigurationRecord
	Confidence float64
	// Warning notes why the candidate scored low, when it did
	Warning string
}

// Scanner walks search paths looking for candidate configuration records.
type Scanner struct {
	searchPaths  []string
	filePatterns []string
}

// NewScanner creates a scanner over the default search locations: the working
// directory, the user config directories, and the system-wide directory.
func NewScanner() *Scanner {
	homeDir, _ := os.UserHomeDir()
	workDir, _ := os.Getwd()

	return &Scanner{
		searchPaths: []string{
			workDir,
			filepath.Join(homeDir, ".svcsync"),
			filepath.Join(homeDir, ".config", "svcsync"),
			"/etc/svcsync",
		},
		filePatterns: []string{
			"services.json",
			"services.yaml",
			"services.yml",
			"svcsync.json",
			"svcsync.yaml",
			"svcsync.yml",
		},
	}
}

// SetSearchPaths replaces the paths to search.
func (s *Scanner) SetSearchPaths(paths []string) {
	s.searchPaths = paths
}

// SetFilePatterns replaces the file name patterns to match.
func (s *Scanner) SetFilePatterns(patterns []string) {
	s.filePatterns = patterns
}

// Scan searches every configured path for record files and returns parsed
// candidates ordered by descending confidence. Unreadable or unparsable files
// are skipped; missing search paths are not an error.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate

	seen := make(map[string]bool)

	for _, searchPath := range s.searchPaths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "scanning for configuration records")
		}

		if _, err := os.Stat(searchPath); os.IsNotExist(err) {
			continue
		}

		for _, pattern := range s.filePatterns {
			fullPath := filepath.Join(searchPath, pattern)

			absPath, err := filepath.Abs(fullPath)
			if err != nil || seen[absPath] {
				continue
			}

			seen[absPath] = true

			candidate, ok := s.inspect(fullPath)
			if ok {
				candidates = append(candidates, candidate)
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})

	return candidates, nil
}

// inspect parses one file and scores it.
func (s *Scanner) inspect(path string) (Candidate, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, false
	}

	record, err := Parse(data)
	if err != nil || record == nil {
		return Candidate{}, false
	}

	candidate := Candidate{
		Path:       path,
		Record:     record,
		Confidence: scoreParsed + scoreExactPattern,
	}

	if len(record.Services) > 0 {
		candidate.Confidence += scoreHasServices
	} else {
		candidate.Warning = "no services defined"
	}

	if record.Version != "" {
		candidate.Confidence += scoreHasVersion
	}

	return candidate, true
}
