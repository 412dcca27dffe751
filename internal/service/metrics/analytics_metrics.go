package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	TechnicalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradesim",
			Subsystem: "technical",
			Name:      "latency_seconds",
			Help:      "Latency of technical analysis endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TechnicalErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradesim",
			Subsystem: "technical",
			Name:      "errors_total",
			Help:      "Errors by technical analysis endpoint",
		},
		[]string{"endpoint"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradesim",
			Subsystem: "technical",
			Name:      "cache_hits_total",
			Help:      "Summary cache lookups by result",
		},
		[]string{"result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(TechnicalLatency, TechnicalErrors, CacheHits)
	})
}
