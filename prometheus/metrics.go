// Package prometheus records batch extraction metrics with
// prometheus/client_golang and exports them in the node_exporter textfile
// format.
package prometheus

import (
	"github.com/fwojciec/prodmeta/scrape"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for batch extraction.
type Metrics struct {
	Registry *prometheus.Registry

	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	BatchURLs          prometheus.Gauge
	BatchCompleted     prometheus.Gauge
	BatchDuration      prometheus.Gauge
	BatchesTotal       prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodmeta_extractions_total",
			Help: "Product extractions by status and failure code.",
		},
		[]string{"status", "code"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prodmeta_extraction_duration_seconds",
			Help:    "Time to render and extract one URL.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)
	urls := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prodmeta_batch_urls",
			Help: "URLs in the current batch.",
		},
	)
	completed := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prodmeta_batch_completed_urls",
			Help: "URLs processed so far in the current batch.",
		},
	)
	batchDuration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prodmeta_batch_duration_seconds",
			Help: "Wall-clock duration of the last finished batch.",
		},
	)
	batches := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prodmeta_batches_total",
			Help: "Finished batches.",
		},
	)

	registry.MustRegister(extractions, duration, urls, completed, batchDuration, batches)

	return &Metrics{
		Registry:           registry,
		ExtractionsTotal:   extractions,
		ExtractionDuration: duration,
		BatchURLs:          urls,
		BatchCompleted:     completed,
		BatchDuration:      batchDuration,
		BatchesTotal:       batches,
	}
}

// Observe records a batch progress event. It has the signature of
// scrape.ProgressFunc and is safe to call on a nil Metrics.
func (m *Metrics) Observe(event scrape.ProgressEvent) {
	if m == nil {
		return
	}
	switch event.Type {
	case scrape.ProgressStarted:
		m.BatchURLs.Set(float64(event.Total))
		m.BatchCompleted.Set(0)
	case scrape.ProgressCompleted, scrape.ProgressFailed:
		status, code := "success", "none"
		if event.Outcome != nil && !event.Outcome.Success {
			status, code = "failure", event.Outcome.Code
		}
		m.ExtractionsTotal.WithLabelValues(status, code).Inc()
		m.ExtractionDuration.Observe(event.Duration.Seconds())
		m.BatchCompleted.Set(float64(event.Completed))
	case scrape.ProgressFinished:
		m.BatchCompleted.Set(float64(event.Completed))
		m.BatchDuration.Set(event.Duration.Seconds())
		m.BatchesTotal.Inc()
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
