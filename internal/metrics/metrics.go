package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watermarker"

// Metrics holds the run collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	filesProcessed prometheus.Counter
	filesFailed    prometheus.Counter
	batchDuration  prometheus.Histogram
	discovered     prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Images watermarked and written successfully.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Images whose pipeline failed.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		discovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "images_discovered",
			Help:      "Supported images found in the input directory by the last run.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run succeeded, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.filesProcessed,
		m.filesFailed,
		m.batchDuration,
		m.discovered,
		m.lastRunSuccess,
	)
	return m
}

func (m *Metrics) ImagesDiscovered(n int) { m.discovered.Set(float64(n)) }

func (m *Metrics) FileProcessed() { m.filesProcessed.Inc() }

func (m *Metrics) FileFailed() { m.filesFailed.Inc() }

func (m *Metrics) ObserveBatch(d time.Duration) { m.batchDuration.Observe(d.Seconds()) }

func (m *Metrics) RunFinished(success bool) {
	if success {
		m.lastRunSuccess.Set(1)
		return
	}
	m.lastRunSuccess.Set(0)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
