package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	BrochureGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brochure_generations_total",
			Help: "Total number of brochure generations by backend and outcome",
		},
		[]string{"backend", "status"},
	)

	BrochureGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brochure_generation_duration_seconds",
			Help:    "Duration of brochure generation in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"backend"},
	)

	ImageResolutionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "brochure_image_resolution_failures_total",
			Help: "Total number of image references replaced by the placeholder image",
		},
	)

	RenderContextsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "brochure_render_contexts_active",
			Help: "Number of headless browser render contexts currently held",
		},
	)
)

// ObserveGeneration records the outcome and duration of one generation
func ObserveGeneration(backend string, started time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	BrochureGenerations.WithLabelValues(backend, status).Inc()
	BrochureGenerationDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
}
