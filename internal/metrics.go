package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the model client, stages and HTTP API
type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CacheEvictions  prometheus.Counter
	BackendDuration *prometheus.HistogramVec
	BackendErrors   *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "cache_hits_total",
			Help:      "Total response cache hits.",
		}),

		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "cache_misses_total",
			Help:      "Total response cache misses.",
		}),

		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "cache_evictions_total",
			Help:      "Total entries evicted from the response cache at capacity.",
		}),

		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vidstudy",
			Name:      "backend_duration_seconds",
			Help:      "Model backend call duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"backend", "model"}),

		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "backend_errors_total",
			Help:      "Total model backend failures by kind.",
		}, []string{"backend", "kind"}),

		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "fallbacks_total",
			Help:      "Total fallback texts produced, by stage.",
		}, []string{"stage"}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vidstudy",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vidstudy",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheEvictions,
		m.BackendDuration,
		m.BackendErrors,
		m.Fallbacks,
		m.RequestsTotal,
		m.RequestDuration,
	)

	return m
}

// fallback counts a fallback for stage; nil-safe
func (m *Metrics) fallback(stage string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(stage).Inc()
}
