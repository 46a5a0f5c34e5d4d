// =============================================================================
// Disperse Validator - Processor Module
// =============================================================================
//
// This module runs the validation pipeline for a single recipient file.
//
// PROCESSING PIPELINE:
//   1. Load the file (plain text, CSV or XLSX)
//   2. Validate the recipient list
//   3. Resolve duplicates with the configured policy, then re-validate
//   4. Write an error log when problems remain
//   5. Write the (possibly rewritten) list to the output directory
//   6. Archive the input when it came out clean
//
// CONCURRENCY:
//   A Processor owns all of its state, so RunBatch can run one per goroutine.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/logging"
	"github.com/ginjaninja78/disperse-validator/internal/reconcile"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
	"github.com/ginjaninja78/disperse-validator/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the written recipient list.
	// Empty on failure, in dry-run mode, or when errors block the output.
	OutputFile string

	// ErrorLog is the path to the error log, if one was written.
	ErrorLog string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Policy is the duplicate policy that was applied.
	Policy reconcile.Policy

	// Validation is the final validation result (after any reconciliation).
	Validation validation.Result

	// Success indicates whether the file was processed end to end. A file
	// with validation problems can still be processed successfully.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// Clean reports whether the file was processed and has no problems left.
func (r Result) Clean() bool {
	return r.Success && r.Validation.Valid()
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// LinesRead is the number of lines in the loaded text.
	LinesRead int

	// LinesWritten is the number of lines in the final text.
	LinesWritten int

	// InitialErrors and InitialDuplicates describe the file before any
	// duplicate policy was applied.
	InitialErrors     int
	InitialDuplicates int

	// ValidationErrors and DuplicateGroups describe the final text.
	ValidationErrors int
	DuplicateGroups  int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// LinesRemoved returns how many lines the duplicate policy removed.
func (s ProcessingStats) LinesRemoved() int {
	return s.LinesRead - s.LinesWritten
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor handles the validation of a single recipient file.
type Processor struct {
	path   string
	config *config.MainConfig
	files  *utils.FileManager
	logger logging.Logger

	// DryRun validates and reconciles without writing or moving any file.
	DryRun bool
}

// New creates a new Processor instance.
//
// PARAMETERS:
//   - path: The path to the recipient file.
//   - cfg: The main application configuration.
//   - logger: Destination for progress messages; nil discards them.
func New(path string, cfg *config.MainConfig, logger logging.Logger) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.ErrorLogDir)
	files.ArchiveOnSuccess = cfg.ArchiveOnSuccess

	return &Processor{
		path:   path,
		config: cfg,
		files:  files,
		logger: logger,
	}
}

// ValidatorOptions converts the configured validation settings.
func ValidatorOptions(cfg *config.MainConfig) validation.Options {
	return validation.Options{
		CaseSensitiveDuplicates: cfg.Validation.CaseSensitiveDuplicates,
		ReportExtraFields:       cfg.Validation.ReportExtraFields,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (p *Processor) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: p.path}

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	p.logger.Info("Processing file: %s", p.path)

	policy, err := reconcile.ParsePolicy(p.config.DuplicatePolicy)
	if err != nil {
		result.Error = err
		return result
	}
	result.Policy = policy

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	input, err := Load(p.path, p.config.Import)
	if err != nil {
		result.Error = err
		return result
	}
	p.logger.Debug("Loaded %s input from %s", input.Kind, p.path)

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	validator := validation.New(ValidatorOptions(p.config))
	initial := validator.Validate(input.Text)

	result.Stats.LinesRead = initial.LineCount
	result.Stats.InitialErrors = len(initial.Errors)
	result.Stats.InitialDuplicates = len(initial.Duplicates)
	result.Validation = initial

	p.logger.Debug("Validated %d line(s): %d error(s), %d duplicate address(es)",
		initial.LineCount, len(initial.Errors), len(initial.Duplicates))

	// =========================================================================
	// STEP 3: RESOLVE DUPLICATES
	// =========================================================================

	text := input.Text
	sourceRow := input.SourceRow
	if initial.HasDuplicates() && policy != reconcile.PolicyNone {
		outcome, err := reconcile.New(validator).Resolve(text, policy)
		if err != nil {
			result.Error = fmt.Errorf("failed to resolve duplicates: %w", err)
			return result
		}

		text = outcome.Text
		result.Validation = outcome.Result
		// Line numbers of rewritten text no longer match spreadsheet rows.
		sourceRow = nil
		p.logger.Info("Applied %s to %s: %d line(s) removed", policy, p.path, outcome.Removed())
	} else {
		// Without a rewrite the output is the loaded text unchanged.
		result.Policy = reconcile.PolicyNone
	}

	final := result.Validation
	result.Stats.LinesWritten = final.LineCount
	result.Stats.ValidationErrors = len(final.Errors)
	result.Stats.DuplicateGroups = len(final.Duplicates)

	for _, message := range final.Messages() {
		p.logger.Warn("%s: %s", p.path, message)
	}

	if p.DryRun {
		p.logger.Info("Dry run: %s", validation.FormatErrors(final))
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 4: WRITE ERROR LOG
	// =========================================================================

	if !final.Valid() {
		entries := utils.ErrorLogEntries(p.path, final, sourceRow)
		logPath, err := utils.WriteErrorLog(entries, p.files.ErrorLogDir, p.path)
		if err != nil {
			result.Error = fmt.Errorf("failed to write error log: %w", err)
			return result
		}
		result.ErrorLog = logPath
		p.logger.Info("Wrote error log to: %s", logPath)

		if !p.config.ShouldContinueOnError() {
			result.Error = fmt.Errorf("validation failed with %d error(s) and %d duplicate address(es)",
				len(final.Errors), len(final.Duplicates))
			return result
		}
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	outputName := utils.GenerateOutputFileName(p.config.OutputNameFormat, map[string]string{
		"original": utils.BaseName(p.path),
		"policy":   string(result.Policy),
	})

	outputPath, err := utils.WriteOutputFile(p.files.OutputDir, outputName, text+"\n")
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	p.logger.Info("Wrote output to: %s", outputPath)

	// =========================================================================
	// STEP 6: ARCHIVE INPUT
	// =========================================================================

	if final.Valid() && p.files.ArchiveOnSuccess {
		archivePath, err := p.files.ArchiveInputFile(p.path)
		if err != nil {
			// Log the error but don't fail the processing.
			p.logger.Warn("Failed to archive %s: %v", p.path, err)
		} else {
			result.ArchivePath = archivePath
			p.logger.Debug("Archived input to: %s", archivePath)
		}
	}

	result.Success = true
	return result
}
