package rates

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK          = "ok"
	statusEmpty       = "empty"
	statusUpstream    = "upstream_error"
	statusPersistence = "persistence_error"

	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

var (
	histogramIngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tcmb_rates",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)

	counterSavedRates = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tcmb_rates",
			Subsystem: "ingest",
			Name:      "saved_records_total",
		},
	)

	counterLatestCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tcmb_rates",
			Subsystem: "cache",
			Name:      "latest_requests_total",
		},
		[]string{"result"},
	)
)

func observeIngest(elapsed time.Duration, status string, saved int) {
	histogramIngestDuration.
		WithLabelValues(status).
		Observe(elapsed.Seconds())
	counterSavedRates.Add(float64(saved))
}

func observeCache(result string) {
	counterLatestCache.WithLabelValues(result).Inc()
}
