package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ComparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_comparisons_total",
			Help: "Comparisons submitted, by outcome",
		},
		[]string{"status"},
	)

	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aura_prediction_duration_seconds",
			Help:    "Estimator call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"side"},
	)

	ReportsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aura_reports_saved_total",
			Help: "Reports appended to the saved collection",
		},
	)

	ReportsExported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_reports_exported_total",
			Help: "Reports encoded for download",
		},
		[]string{"format"},
	)

	StorageCorruptionRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aura_storage_corruption_recovered_total",
			Help: "Times a corrupt saved-report slot was reset to empty",
		},
	)

	EstimatorTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_estimator_tokens_used",
			Help: "LLM tokens consumed by energy estimates",
		},
		[]string{"model", "type"},
	)

	EstimatorBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aura_estimator_breaker_state",
			Help: "Estimator circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ComparisonsTotal,
			PredictionDuration,
			ReportsSaved,
			ReportsExported,
			StorageCorruptionRecovered,
			EstimatorTokensUsed,
			EstimatorBreakerState,
		)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
