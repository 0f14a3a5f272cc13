package batch

import (
	"context"
	"time"

	"image-watermarker/internal/domain"
)

type imageProcessor interface {
	Process(ctx context.Context, filename, inputDir, outputDir string, cfg domain.WatermarkJobConfig) (string, error)
}

type directoryStore interface {
	DirExists(path string) (bool, error)
	EnsureDir(path string) error
	ListFiles(dir string) ([]string, error)
}

type metricsRecorder interface {
	ImagesDiscovered(n int)
	FileProcessed()
	FileFailed()
	ObserveBatch(d time.Duration)
	RunFinished(success bool)
}

// ProgressReporter receives one update per completed batch.
type ProgressReporter interface {
	Report(p domain.BatchProgress)
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(p domain.BatchProgress)

func (f ProgressFunc) Report(p domain.BatchProgress) { f(p) }

type noopMetrics struct{}

func (noopMetrics) ImagesDiscovered(int) {}
func (noopMetrics) FileProcessed() {}
func (noopMetrics) FileFailed() {}
func (noopMetrics) ObserveBatch(time.Duration) {}
func (noopMetrics) RunFinished(bool) {}
