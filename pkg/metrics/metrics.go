package metrics

import (
	"runtime"
	"time"

	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// StatusFailed labels runs that ended with an error
const StatusFailed = "failed"

var _ pregel.ProgressListener = (*Registry)(nil)

// RecordSuperstep records one completed superstep
func (r *Registry) RecordSuperstep(algorithm string, duration time.Duration, activeNodes, messagesSent int64) {
	r.SuperstepsTotal.WithLabelValues(algorithm).Inc()
	r.SuperstepDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.MessagesSentTotal.WithLabelValues(algorithm).Add(float64(messagesSent))
	r.ActiveNodes.WithLabelValues(algorithm).Set(float64(activeNodes))
}

// RecordRun records a finished run
func (r *Registry) RecordRun(algorithm, status string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(algorithm, status).Inc()
	r.RunDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// OnSuperstep implements pregel.ProgressListener
func (r *Registry) OnSuperstep(stats pregel.SuperstepStats) {
	r.RecordSuperstep(stats.Algorithm, stats.Duration, stats.ActiveNodes, stats.MessagesSent)
}

// OnFinish implements pregel.ProgressListener
func (r *Registry) OnFinish(summary pregel.RunSummary) {
	status := summary.Status.String()
	if summary.Err != nil {
		status = StatusFailed
	}
	r.RecordRun(summary.Algorithm, status, summary.Duration)
}

// UpdateSystemMetrics samples uptime, goroutines and memory
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
	r.MemorySysBytes.Set(float64(mem.Sys))
}
