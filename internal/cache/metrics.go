package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Metrics counts cache lookups per layer and outcome.
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics registers the cache counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bglist",
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "Cache lookups by cache layer and result (hit, miss, error).",
			},
			[]string{"cache", "result"},
		),
	}
}

func (m *Metrics) observe(cache, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(cache, result).Inc()
}
