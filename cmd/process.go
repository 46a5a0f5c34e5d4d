// =============================================================================
// Disperse Validator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which validates every recipient
// file in the input directory.
//
// COMMAND USAGE:
//   disperse process [flags]
//
// FLAGS:
//   --dry-run : Validate and resolve without writing or moving any file
//   --file    : Process only this file instead of scanning the input directory
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover recipient files in the input directory
//   3. For each file (concurrently, up to max_concurrency):
//      a. Load the list (text, CSV or XLSX)
//      b. Validate it
//      c. Resolve duplicates with duplicate_policy and re-validate
//      d. Write an error log when problems remain
//      e. Write the output file
//      f. Archive the input when it came out clean
//   4. Write a processing summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/disperse-validator/internal/processor"
	"github.com/ginjaninja78/disperse-validator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

// filePath is the path to a specific file to process.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate every recipient file in the input directory",
	Long: `The process command scans the input directory for recipient files and runs
each through validation and, when configured, duplicate resolution.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

For every file:
  - The validated (possibly rewritten) list is placed in the output directory
  - An error log is written when problems remain
  - Clean inputs are moved to the input archive when archive_on_success is set

A processing summary is written to the output directory at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate without writing or moving any file",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	files := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir,
		appConfig.InputArchiveDir, appConfig.ErrorLogDir)
	files.ArchiveOnSuccess = appConfig.ArchiveOnSuccess

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else {
		if !dryRun {
			if err := files.EnsureDirectories(); err != nil {
				return err
			}
		}

		discovered, err := files.DiscoverInputFiles(appConfig.FilePatterns...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = discovered
	}

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No recipient files found in %s.\n", appConfig.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))
	appLogger.Info("Processing %d file(s) with policy %s", len(inputFiles), appConfig.DuplicatePolicy)

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processor.RunBatch(cmd.Context(), inputFiles, appConfig, appLogger.With("command", "process"),
		processor.BatchOptions{DryRun: dryRun})

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case !result.Success:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		case result.Validation.Valid():
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, displayPath(result.OutputFile))
		default:
			fmt.Fprintf(out, "  ! %s -> %s (%d error(s), %d duplicate address(es), see %s)\n",
				name, displayPath(result.OutputFile),
				result.Stats.ValidationErrors, result.Stats.DuplicateGroups, displayPath(result.ErrorLog))
		}
	}

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	summary := processor.Summarize(results, startTime, time.Now())

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Problems left:   %d error(s), %d duplicate address(es)\n",
		summary.ValidationErrors, summary.DuplicateGroups)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if dryRun {
		return nil
	}

	summaryPath, err := utils.WriteSummaryLog(summary, appConfig.OutputDir)
	if err != nil {
		return err
	}
	appLogger.Info("Wrote processing summary to: %s", summaryPath)

	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "(not written)"
	}
	return path
}
