package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPregelMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pregel_runs_total",
			Help: "Total number of pregel runs by terminal status",
		},
		[]string{"algorithm", "status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pregel_run_duration_seconds",
			Help:    "Wall-clock duration of pregel runs in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"algorithm"},
	)

	r.SuperstepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pregel_supersteps_total",
			Help: "Total number of completed supersteps",
		},
		[]string{"algorithm"},
	)

	r.SuperstepDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pregel_superstep_duration_seconds",
			Help:    "Superstep duration in seconds, barrier to barrier",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	r.MessagesSentTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pregel_messages_sent_total",
			Help: "Total number of messages sent between nodes",
		},
		[]string{"algorithm"},
	)

	r.ActiveNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pregel_active_nodes",
			Help: "Nodes computed in the most recent superstep",
		},
		[]string{"algorithm"},
	)
}
