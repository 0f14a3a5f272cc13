package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"image-watermarker/internal/config"
	"image-watermarker/internal/domain"
	"image-watermarker/internal/metrics"
	"image-watermarker/internal/repository/image/local"
	"image-watermarker/internal/usecase/batch"
	"image-watermarker/internal/usecase/processor"

	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg          *config.Config
	logger       *zlog.Zerolog
	orchestrator *batch.Orchestrator
	metrics      *metrics.Metrics
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	imageRepo, err := local.NewImageRepository(cfg.Batch.JPEGQuality, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image repository: %w", err)
	}

	m := metrics.New()
	imageProcessor := processor.NewImageProcessor(imageRepo, logger)
	orchestrator := batch.NewOrchestrator(imageProcessor, imageRepo, m, batch.Options{
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		FailurePolicy: cfg.FailurePolicy(),
	}, logger)

	logger.Info().
		Int("max_concurrent", cfg.Batch.MaxConcurrent).
		Str("failure_policy", cfg.Batch.FailurePolicy).
		Int("jpeg_quality", cfg.Batch.JPEGQuality).
		Msg("Watermarker configuration")

	return &App{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		metrics:      m,
	}, nil
}

// Run validates job and processes it. SIGINT and SIGTERM stop the run before
// the next batch starts.
func (a *App) Run(ctx context.Context, job domain.WatermarkJobConfig, progress batch.ProgressReporter) domain.RunResult {
	if err := job.Validate(); err != nil {
		a.logger.Error().Err(err).Msg("Rejected job config")
		return domain.RunResult{Success: false, Message: err.Error()}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.handleSignals(ctx, cancel)

	result := a.orchestrator.Run(ctx, job, progress)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Error().Err(err).Str("path", path).Msg("Failed to write metrics")
		} else {
			a.logger.Debug().Str("path", path).Msg("Metrics written")
		}
	}

	return result
}

func (a *App) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info().Str("signal", sig.String()).Msg("Received signal, finishing current batch")
		cancel()
	case <-ctx.Done():
	}
}
