package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"image-watermarker/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	MaxConcurrent int
	FailurePolicy domain.FailurePolicy
}

// Orchestrator runs the single-image pipeline over a directory in
// sequential batches of at most MaxConcurrent files.
type Orchestrator struct {
	processor imageProcessor
	store     directoryStore
	metrics   metricsRecorder
	opts      Options
	logger    *zlog.Zerolog
}

func NewOrchestrator(processor imageProcessor, store directoryStore, metrics metricsRecorder, opts Options, logger *zlog.Zerolog) *Orchestrator {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = domain.DefaultMaxConcurrent
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = domain.FailFast
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Orchestrator{
		processor: processor,
		store:     store,
		metrics:   metrics,
		opts:      opts,
		logger:    logger,
	}
}

type fileOutcome struct {
	filename string
	err      error
}

// Run processes every supported image in cfg.InputDir. It never returns an
// error: every failure is folded into the RunResult.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.WatermarkJobConfig, progress ProgressReporter) domain.RunResult {
	runID := uuid.New().String()
	start := time.Now()

	o.logger.Info().
		Str("run_id", runID).
		Str("input_dir", cfg.InputDir).
		Str("output_dir", cfg.OutputDir).
		Int("max_concurrent", o.opts.MaxConcurrent).
		Str("failure_policy", string(o.opts.FailurePolicy)).
		Msg("Starting watermark run")

	result := o.run(ctx, runID, cfg, progress)
	result.RunID = runID
	o.metrics.RunFinished(result.Success)

	if result.Success {
		o.logger.Info().
			Str("run_id", runID).
			Int("processed", len(result.ProcessedFilenames)).
			Dur("duration", time.Since(start)).
			Msg("Watermark run completed")
	} else {
		o.logger.Error().
			Str("run_id", runID).
			Str("message", result.Message).
			Strs("failed", result.FailedFilenames).
			Dur("duration", time.Since(start)).
			Msg("Watermark run failed")
	}

	return result
}

func (o *Orchestrator) run(ctx context.Context, runID string, cfg domain.WatermarkJobConfig, progress ProgressReporter) domain.RunResult {
	exists, err := o.store.DirExists(cfg.InputDir)
	if err != nil || !exists {
		o.logger.Error().
			Err(err).
			Str("run_id", runID).
			Str("input_dir", cfg.InputDir).
			Msg("Input directory is missing")
		return failure(fmt.Sprintf("Input directory does not exist: %s", cfg.InputDir))
	}

	if err := o.store.EnsureDir(cfg.OutputDir); err != nil {
		return failure(err.Error())
	}

	names, err := o.store.ListFiles(cfg.InputDir)
	if err != nil {
		return failure(fmt.Errorf("failed to list input directory: %w", err).Error())
	}

	files := filterImages(names)
	o.metrics.ImagesDiscovered(len(files))
	if len(files) == 0 {
		return failure("No images found in the input directory.")
	}

	total := len(files)
	batchSize := min(o.opts.MaxConcurrent, total)

	o.logger.Info().
		Str("run_id", runID).
		Int("total", total).
		Int("batch_size", batchSize).
		Msg("Found images to process")

	var (
		processed []string
		failed    []string
		messages  []string
	)

	for batchStart, batchNum := 0, 1; batchStart < total; batchStart, batchNum = batchStart+batchSize, batchNum+1 {
		if err := ctx.Err(); err != nil {
			return domain.RunResult{
				Success:            false,
				Message:            fmt.Errorf("%w: %w", ErrRunCancelled, err).Error(),
				ProcessedFilenames: processed,
				FailedFilenames:    failed,
			}
		}

		batch := files[batchStart:min(batchStart+batchSize, total)]
		outcomes := o.runBatch(ctx, runID, batchNum, batch, cfg)

		batchFailed := false
		for _, out := range outcomes {
			if out.err != nil {
				batchFailed = true
				failed = append(failed, out.filename)
				messages = append(messages, out.err.Error())
				o.metrics.FileFailed()
				continue
			}
			processed = append(processed, out.filename)
			o.metrics.FileProcessed()
		}

		if batchFailed && o.opts.FailurePolicy != domain.CollectAll {
			return domain.RunResult{
				Success:            false,
				Message:            messages[0],
				ProcessedFilenames: processed,
				FailedFilenames:    failed,
			}
		}

		p := domain.BatchProgress{
			Processed:    len(processed),
			Total:        total,
			Percentage:   percentage(len(processed), total),
			CurrentBatch: batch,
		}

		o.logger.Info().
			Str("run_id", runID).
			Int("batch", batchNum).
			Int("processed", p.Processed).
			Int("total", p.Total).
			Int("percentage", p.Percentage).
			Msg("Batch completed")

		if progress != nil {
			progress.Report(p)
		}
	}

	if len(failed) > 0 {
		return domain.RunResult{
			Success: false,
			Message: fmt.Sprintf("Processed %d of %d images; %d failed: %s",
				len(processed), total, len(failed), strings.Join(messages, "; ")),
			ProcessedFilenames: processed,
			FailedFilenames:    failed,
		}
	}

	return domain.RunResult{
		Success:            true,
		Message:            fmt.Sprintf("Processed %d images successfully.", len(processed)),
		ProcessedFilenames: processed,
	}
}

// runBatch starts one pipeline per file and waits for all of them. A failed
// pipeline never cancels its siblings.
func (o *Orchestrator) runBatch(ctx context.Context, runID string, batchNum int, batch []string, cfg domain.WatermarkJobConfig) []fileOutcome {
	start := time.Now()
	outcomes := make([]fileOutcome, len(batch))

	o.logger.Debug().
		Str("run_id", runID).
		Int("batch", batchNum).
		Strs("files", batch).
		Msg("Starting batch")

	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrent)
	for i, filename := range batch {
		i, filename := i, filename
		g.Go(func() error {
			outcomes[i] = fileOutcome{
				filename: filename,
				err:      o.safeProcess(ctx, runID, filename, cfg),
			}
			return nil
		})
	}
	_ = g.Wait()

	o.metrics.ObserveBatch(time.Since(start))
	return outcomes
}

func (o *Orchestrator) safeProcess(ctx context.Context, runID, filename string, cfg domain.WatermarkJobConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("run_id", runID).
				Str("file", filename).
				Interface("panic", r).
				Msg("Panic recovered while processing image")
			err = domain.NewImageProcessingError(filename, domain.OpPipeline, fmt.Errorf("%w: %v", ErrPipelinePanic, r))
		}
	}()

	_, err = o.processor.Process(ctx, filename, cfg.InputDir, cfg.OutputDir, cfg)
	if err != nil {
		var pe *domain.ImageProcessingError
		if !errors.As(err, &pe) {
			err = domain.NewImageProcessingError(filename, domain.OpPipeline, err)
		}
	}
	return err
}

func failure(message string) domain.RunResult {
	return domain.RunResult{Success: false, Message: message}
}

func filterImages(names []string) []string {
	files := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := domain.SupportedExtensions[strings.ToLower(filepath.Ext(name))]; ok {
			files = append(files, name)
		}
	}
	return files
}

func percentage(processed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}
