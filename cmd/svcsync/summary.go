package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
	"github.com/smykla-skalski/svcsync/pkg/merge"
	"github.com/smykla-skalski/svcsync/pkg/store"
)

// writeRecord prints a record as pretty JSON, colorized when stdout is an
// interactive terminal.
func writeRecord(w io.Writer, record *configtypes.ConfigurationRecord) error {
	data, err := store.MarshalJSON(record)
	if err != nil {
		return err
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data = pretty.Color(data, nil)
	}

	fmt.Fprintln(w, string(data))

	return nil
}

// renderMergeSummary prints the merge outcome: stats, warnings, and any
// deferred conflicts, in that order.
func renderMergeSummary(w io.Writer, result *merge.MergeResult) {
	status := "succeeded"
	if !result.Succeeded {
		status = "failed"
	}

	fmt.Fprintf(w, "Merge %s: %s\n", status, result.Stats.String())

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))

		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(result.Warnings))

		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(w, "\nDeferred conflicts (%d):\n", len(result.Conflicts))

		for _, conflict := range result.Conflicts {
			fmt.Fprintf(w, "  - %s\n", conflict.Description)
		}

		fmt.Fprintln(w, "\nRe-run with --strategy overwrite|skip|merge, or resolve each conflict and merge again.")
	}

	fmt.Fprintln(w)
}

// renderDiff prints the service-name partition of two records plus the
// conflicts a merge would detect between them.
func renderDiff(
	w io.Writer,
	pathA, pathB string,
	differences *merge.Differences,
	conflicts []merge.Conflict,
	detail bool,
) {
	fmt.Fprintf(w, "Comparing %s and %s\n\n", pathA, pathB)

	renderNameList(w, "Only in "+pathA, differences.OnlyInFirst)
	renderNameList(w, "Only in "+pathB, differences.OnlyInSecond)
	renderNameList(w, "Different", differences.Different)
	renderNameList(w, "Identical", differences.Identical)

	if len(conflicts) == 0 {
		fmt.Fprintln(w, "\nNo conflicts: the records are merge-compatible.")

		return
	}

	fmt.Fprintf(w, "\nConflicts a merge would detect (%d):\n", len(conflicts))

	for _, conflict := range conflicts {
		fmt.Fprintf(w, "  %s: %s\n", conflict.ServiceName, strings.Join(conflict.Fields, ", "))

		if detail {
			for line := range strings.Lines(conflict.Detail()) {
				fmt.Fprintf(w, "    %s", line)
			}
		}
	}
}

func renderNameList(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s (%d):", title, len(names))

	if len(names) == 0 {
		fmt.Fprintln(w, " none")

		return
	}

	fmt.Fprintf(w, " %s\n", strings.Join(names, ", "))
}

// renderValidation prints one record's validation report.
func renderValidation(w io.Writer, path string, report merge.ValidationReport) {
	status := "valid"
	if !report.Valid {
		status = "INVALID"
	}

	fmt.Fprintf(w, "%s: %s\n", path, status)

	for _, e := range report.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

// renderCandidates prints discovered records ordered by confidence.
func renderCandidates(w io.Writer, candidates []store.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No configuration records found.")

		return
	}

	fmt.Fprintf(w, "Found %d candidate record(s):\n", len(candidates))

	for _, candidate := range candidates {
		fmt.Fprintf(w, "  %.2f  %s  (%d services)",
			candidate.Confidence, candidate.Path, len(candidate.Record.Services))

		if candidate.Warning != "" {
			fmt.Fprintf(w, "  [%s]", candidate.Warning)
		}

		fmt.Fprintln(w)
	}
}
