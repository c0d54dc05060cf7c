// Package metric holds the Prometheus instruments exposed on the ops
// listener.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counts dispatch-cycle activity.
type Engine struct {
	Cycles        prometheus.Counter
	Notifications *prometheus.CounterVec
	Attempts      *prometheus.CounterVec
	CycleDuration prometheus.Histogram
}

// NewEngine registers the dispatch metrics on reg. Tests pass a private
// registry to avoid duplicate registration.
func NewEngine(reg prometheus.Registerer) *Engine {
	factory := promauto.With(reg)

	return &Engine{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatcher",
			Name:      "cycles_total",
			Help:      "Completed dispatch cycles.",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatcher",
			Name:      "notifications_total",
			Help:      "Notifications by terminal status.",
		}, []string{"status"}),
		Attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatcher",
			Name:      "send_attempts_total",
			Help:      "Per-device send attempts by outcome.",
		}, []string{"status"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dispatcher",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one dispatch cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
