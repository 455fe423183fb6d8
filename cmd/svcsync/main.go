// svcsync reconciles service-launcher configuration records: multiple copies
// of "which process to launch, with which arguments and environment" are
// merged into one authoritative record, with conflicts detected, classified,
// and resolved under an explicit strategy.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/svcsync/internal/configtypes"
	"github.com/smykla-skalski/svcsync/pkg/github"
	"github.com/smykla-skalski/svcsync/pkg/logger"
	"github.com/smykla-skalski/svcsync/pkg/merge"
	"github.com/smykla-skalski/svcsync/pkg/store"
	"github.com/smykla-skalski/svcsync/pkg/validate"
)

var version = "dev"

// exitUnresolved is returned when a merge completes but deferred conflicts
// remain for the caller to resolve.
const exitUnresolved = 2

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "svcsync",
		Short:   "Reconcile service configuration records",
		Long:    "svcsync merges service-launcher configuration records from multiple sources into one authoritative record, reporting every conflict it resolves or defers.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := getStringFlagWithEnvFallback(cmd, "log-level")
			format := getStringFlagWithEnvFallback(cmd, "log-format")

			log := logger.NewWithFormat(level, format)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newMergeCmd(),
		newDiffCmd(),
		newValidateCmd(),
		newScanCmd(),
		newFetchCmd(),
	)

	return rootCmd
}

func newMergeCmd() *cobra.Command {
	mergeCmd := &cobra.Command{
		Use:   "merge <record>...",
		Short: "Merge configuration records",
		Long:  "Merge two or more configuration records left to right into one. The first record is the base; later records are merged into it in order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			strategy := getStringFlagWithEnvFallback(cmd, "strategy")
			output := getStringFlagWithEnvFallback(cmd, "output")
			preserveMetadata, _ := cmd.Flags().GetBool("preserve-metadata")
			validateResult, _ := cmd.Flags().GetBool("validate")

			records := make([]*configtypes.ConfigurationRecord, 0, len(args))

			for _, path := range args {
				record, err := store.Read(path)
				if err != nil {
					return err
				}

				records = append(records, record)
			}

			opts := merge.MergeOptions{
				Strategy:         configtypes.MergeStrategy(strategy),
				PreserveMetadata: preserveMetadata,
				ValidateResult:   validateResult,
				Validator:        validate.New(),
			}

			log.Info("merging records",
				"count", len(records),
				"strategy", strategy,
				"preserve_metadata", preserveMetadata,
				"validate", validateResult,
			)

			result, err := merge.MergeMultiple(records, opts)
			if err != nil {
				return err
			}

			renderMergeSummary(cmd.OutOrStdout(), result)

			if output != "" {
				if err := store.Write(output, result.Merged); err != nil {
					return err
				}

				log.Info("merged record written", "path", output, "stats", result.Stats.String())
			} else if err := writeRecord(cmd.OutOrStdout(), result.Merged); err != nil {
				return err
			}

			if !result.Succeeded {
				return errors.Newf("merge failed with %d error(s)", len(result.Errors))
			}

			if len(result.Conflicts) > 0 {
				log.Warn("deferred conflicts remain", "count", len(result.Conflicts))
				os.Exit(exitUnresolved)
			}

			return nil
		},
	}

	mergeCmd.Flags().StringP("strategy", "s", string(configtypes.StrategyDefer),
		"Conflict strategy: overwrite, skip, merge, or defer")
	mergeCmd.Flags().StringP("output", "o", "", "Write the merged record to this path instead of stdout")
	mergeCmd.Flags().Bool("preserve-metadata", false, "Combine metadata from both sides instead of taking the source's")
	mergeCmd.Flags().Bool("validate", false, "Validate the merged record and fail on schema errors")

	return mergeCmd
}

func newDiffCmd() *cobra.Command {
	diffCmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two configuration records",
		Long:  "Partition the services of two records into only-in-first, only-in-second, different, and identical, and preview the conflicts a merge would detect. Neither record is modified.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordA, err := store.Read(args[0])
			if err != nil {
				return err
			}

			recordB, err := store.Read(args[1])
			if err != nil {
				return err
			}

			differences := merge.AnalyzeDifferences(recordA, recordB)
			conflicts := merge.DetectConflicts(recordA, recordB)

			detail, _ := cmd.Flags().GetBool("detail")
			renderDiff(cmd.OutOrStdout(), args[0], args[1], differences, conflicts, detail)

			return nil
		},
	}

	diffCmd.Flags().Bool("detail", false, "Show a field-by-field diff for each conflict")

	return diffCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <record>...",
		Short: "Validate configuration records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator := validate.New()
			failed := 0

			for _, path := range args {
				record, err := store.Read(path)
				if err != nil {
					return err
				}

				report := validator.Validate(record)
				renderValidation(cmd.OutOrStdout(), path, report)

				if !report.Valid {
					failed++
				}
			}

			if failed > 0 {
				return errors.Newf("%d of %d record(s) failed validation", failed, len(args))
			}

			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [dir]...",
		Short: "Discover candidate configuration records",
		Long:  "Search the default locations (or the given directories) for configuration record files and score each candidate by confidence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := store.NewScanner()
			if len(args) > 0 {
				scanner.SetSearchPaths(args)
			}

			candidates, err := scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}

			renderCandidates(cmd.OutOrStdout(), candidates)

			return nil
		},
	}

	return scanCmd
}

func newFetchCmd() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a shared configuration record from GitHub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			repoFlag := getStringFlagWithEnvFallback(cmd, "repo")
			path := getStringFlagWithEnvFallback(cmd, "path")
			output := getStringFlagWithEnvFallback(cmd, "output")

			owner, repo, ok := strings.Cut(repoFlag, "/")
			if !ok || owner == "" || repo == "" {
				return errors.Newf("invalid --repo %q: expected owner/name", repoFlag)
			}

			token, err := github.TokenFromEnv()
			if err != nil {
				return err
			}

			client, err := github.NewClient(ctx, log, token)
			if err != nil {
				return err
			}

			record, err := github.FetchRecord(ctx, client, owner, repo, path)
			if err != nil {
				return err
			}

			if output != "" {
				return store.Write(output, record)
			}

			return writeRecord(cmd.OutOrStdout(), record)
		},
	}

	fetchCmd.Flags().String("repo", "", "Repository in owner/name form (required)")
	fetchCmd.Flags().String("path", github.DefaultRecordPath, "Record path inside the repository")
	fetchCmd.Flags().StringP("output", "o", "", "Write the fetched record to this path instead of stdout")
	_ = fetchCmd.MarkFlagRequired("repo")

	return fetchCmd
}

// getStringFlagWithEnvFallback retrieves a string flag value with environment
// variable fallback. Priority: 1) explicit flag value, 2) SVCSYNC_* env var,
// 3) the flag's default.
func getStringFlagWithEnvFallback(cmd *cobra.Command, flagName string) string {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(flagName)
	}

	if flag == nil {
		return ""
	}

	if flag.Changed {
		return flag.Value.String()
	}

	envName := "SVCSYNC_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
	if val := os.Getenv(envName); val != "" {
		return val
	}

	return flag.Value.String()
}
