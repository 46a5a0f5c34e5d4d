package processor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/logging"
	"github.com/ginjaninja78/disperse-validator/pkg/utils"
)

// BatchOptions controls a batch run.
type BatchOptions struct {
	// DryRun is passed through to every Processor.
	DryRun bool
}

// RunBatch processes files concurrently, at most cfg.MaxConcurrency at a time.
//
// Results are returned in the order of files. A failing file never stops the
// others; its Result carries the error. Files not yet started when ctx is
// cancelled report ctx.Err().
func RunBatch(ctx context.Context, files []string, cfg *config.MainConfig, logger logging.Logger, options BatchOptions) []Result {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			p := New(path, cfg, logger)
			p.DryRun = options.DryRun

			res := p.Run(ctx)
			if res.Error != nil {
				logger.Error("Failed to process %s: %v", path, res.Error)
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// Summarize builds a processing summary from batch results.
func Summarize(results []Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, r := range results {
		if !r.Success {
			summary.FailedFiles++
			message := "unknown error"
			if r.Error != nil {
				message = r.Error.Error()
			}
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: message,
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalLines += r.Stats.LinesRead
		summary.ValidationErrors += r.Stats.ValidationErrors
		summary.DuplicateGroups += r.Stats.DuplicateGroups
		summary.LinesRemoved += r.Stats.LinesRemoved()
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			OutputFile:  r.OutputFile,
			ErrorLog:    r.ErrorLog,
			ArchivePath: r.ArchivePath,
			Policy:      string(r.Policy),
			Lines:       r.Stats.LinesWritten,
			Errors:      r.Stats.ValidationErrors,
			Duplicates:  r.Stats.DuplicateGroups,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}

	return summary
}
