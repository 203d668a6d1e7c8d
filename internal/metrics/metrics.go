// Package metrics exposes Prometheus instrumentation for forecast requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ForecastsTotal counts evaluations by outcome ("ok" or an error kind).
	ForecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_forecasts_total",
			Help: "Total number of forecast evaluations by outcome",
		},
		[]string{"outcome"},
	)

	ForecastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boxoffice_forecast_duration_seconds",
			Help:    "Duration of a full twelve-month forecast evaluation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// BestMonthTotal counts how often each month wins the sweep.
	BestMonthTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_best_month_total",
			Help: "Number of forecasts whose best release month was the labelled month",
		},
		[]string{"month"},
	)

	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boxoffice_history_write_failures_total",
			Help: "Forecasts that could not be persisted to history",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boxoffice_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)

func RecordForecast(outcome string, bestMonth string, d time.Duration) {
	ForecastsTotal.WithLabelValues(outcome).Inc()
	ForecastDuration.Observe(d.Seconds())
	if bestMonth != "" {
		BestMonthTotal.WithLabelValues(bestMonth).Inc()
	}
}
