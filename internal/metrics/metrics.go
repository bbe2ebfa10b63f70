package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestTotal counts ingestion outcomes: stored, deduplicated or error.
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imagevault",
		Name:      "ingest_total",
		Help:      "Ingestion pipeline outcomes.",
	}, []string{"result"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "imagevault",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

// ObserveIngest records one pipeline outcome.
func ObserveIngest(result string) {
	IngestTotal.WithLabelValues(result).Inc()
}
