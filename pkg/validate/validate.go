// Package validate implements the rule-based schema validator for
// configuration records. It satisfies merge.Validator so a pairwise merge can
// check its own output when asked to.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
	"github.com/smykla-skalski/svcsync/pkg/merge"
)

// versionPattern matches the dotted-numeric version convention, e.g. "1.2.0".
var versionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Validator applies structural rules to configuration records. The merge
// engine itself never enforces validity; this is the external check.
type Validator struct{}

// New creates a record validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks a record against the schema rules and returns every finding.
// Errors mark the record unusable; warnings flag suspicious but workable
// content.
func (v *Validator) Validate(record *configtypes.ConfigurationRecord) merge.ValidationReport {
	report := merge.ValidationReport{}

	if record == nil {
		report.Errors = append(report.Errors, "record is nil")
		report.Valid = false

		return report
	}

	if len(record.Services) == 0 {
		report.Warnings = append(report.Warnings, "record defines no services")
	}

	if record.Version != "" && !versionPattern.MatchString(record.Version) {
		report.Warnings = append(
			report.Warnings,
			fmt.Sprintf("record version %q is not dotted-numeric", record.Version),
		)
	}

	for _, name := range sortedNames(record) {
		v.validateService(name, record.Services[name], &report)
	}

	report.Valid = len(report.Errors) == 0

	return report
}

func (v *Validator) validateService(
	name string,
	svc *configtypes.ServiceDescriptor,
	report *merge.ValidationReport,
) {
	if strings.TrimSpace(name) == "" {
		report.Errors = append(report.Errors, "service name must not be blank")
	}

	if svc == nil {
		report.Errors = append(report.Errors, fmt.Sprintf("service %q has no descriptor", name))

		return
	}

	if svc.Command == "" {
		report.Errors = append(report.Errors, fmt.Sprintf("service %q: command must not be empty", name))
	}

	for i, arg := range svc.Args {
		if arg == "" {
			report.Warnings = append(
				report.Warnings,
				fmt.Sprintf("service %q: argument %d is empty", name, i),
			)
		}
	}

	for _, key := range sortedEnvKeys(svc.Env) {
		switch {
		case key == "":
			report.Errors = append(
				report.Errors,
				fmt.Sprintf("service %q: environment key must not be empty", name),
			)
		case strings.Contains(key, "="):
			report.Errors = append(
				report.Errors,
				fmt.Sprintf("service %q: environment key %q contains '='", name, key),
			)
		}
	}

	if svc.WorkingDirectory != "" && !filepath.IsAbs(svc.WorkingDirectory) {
		report.Warnings = append(
			report.Warnings,
			fmt.Sprintf("service %q: working directory %q is not absolute", name, svc.WorkingDirectory),
		)
	}

	if svc.TimeoutMillis < 0 {
		report.Errors = append(
			report.Errors,
			fmt.Sprintf("service %q: timeoutMillis must not be negative", name),
		)
	}

	if svc.Metadata != nil && svc.Metadata.Version != "" &&
		!versionPattern.MatchString(svc.Metadata.Version) {
		report.Warnings = append(
			report.Warnings,
			fmt.Sprintf("service %q: version %q is not dotted-numeric", name, svc.Metadata.Version),
		)
	}
}

func sortedNames(record *configtypes.ConfigurationRecord) []string {
	names := make([]string, 0, len(record.Services))
	for name := range record.Services {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func sortedEnvKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
