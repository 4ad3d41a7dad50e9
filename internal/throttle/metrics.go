package throttle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts throttled requests per route.
type Metrics struct {
	throttled *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		throttled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clubgate_throttled_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		}, []string{"route"}),
	}
}

func (m *Metrics) IncrementThrottled(route string) {
	m.throttled.WithLabelValues(route).Inc()
}
