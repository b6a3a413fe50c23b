package health

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

var _ pregel.ProgressListener = (*RunTracker)(nil)

// RunTracker follows a pregel run and reports it as a liveness check.
// A run that completes no superstep within the stall window is degraded;
// a failed run is unhealthy.
type RunTracker struct {
	mu         sync.Mutex
	stallAfter time.Duration
	now        func() time.Time

	runID        string
	algorithm    string
	running      bool
	superstep    int
	lastProgress time.Time
	summary      *pregel.RunSummary
}

// NewRunTracker creates a tracker. A zero stallAfter disables stall
// detection.
func NewRunTracker(stallAfter time.Duration) *RunTracker {
	return &RunTracker{stallAfter: stallAfter, now: time.Now}
}

// Begin marks the start of a run before its first superstep completes
func (t *RunTracker) Begin(algorithm string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.algorithm = algorithm
	t.running = true
	t.superstep = -1
	t.lastProgress = t.now()
	t.summary = nil
}

// OnSuperstep implements pregel.ProgressListener
func (t *RunTracker) OnSuperstep(stats pregel.SuperstepStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = stats.RunID
	t.algorithm = stats.Algorithm
	t.running = true
	t.superstep = stats.Superstep
	t.lastProgress = t.now()
}

// OnFinish implements pregel.ProgressListener
func (t *RunTracker) OnFinish(summary pregel.RunSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = summary.RunID
	t.running = false
	t.summary = &summary
}

// Check reports the run state
func (t *RunTracker) Check() Check {
	t.mu.Lock()
	defer t.mu.Unlock()

	check := Check{Name: "run", Status: StatusHealthy}
	check.Details = map[string]any{
		"run_id":    t.runID,
		"algorithm": t.algorithm,
		"superstep": t.superstep,
	}

	switch {
	case t.summary != nil && t.summary.Err != nil:
		check.Status = StatusUnhealthy
		check.Message = t.summary.Err.Error()
		check.Details["ran_iterations"] = t.summary.RanIterations
	case t.summary != nil:
		check.Message = t.summary.Status.String()
		check.Details["ran_iterations"] = t.summary.RanIterations
	case !t.running:
		check.Message = "idle"
	default:
		idle := t.now().Sub(t.lastProgress)
		check.Details["since_progress_ms"] = idle.Milliseconds()
		if t.stallAfter > 0 && idle > t.stallAfter {
			check.Status = StatusDegraded
			check.Message = fmt.Sprintf("no superstep completed in %s", idle.Round(time.Millisecond))
		} else {
			check.Message = "running"
		}
	}
	return check
}

// ReadyFlag is a readiness check that turns healthy once set
type ReadyFlag struct {
	name  string
	ready atomic.Bool
}

// NewReadyFlag creates an unset flag
func NewReadyFlag(name string) *ReadyFlag {
	return &ReadyFlag{name: name}
}

// Set marks the component ready
func (f *ReadyFlag) Set() {
	f.ready.Store(true)
}

// Check reports the flag
func (f *ReadyFlag) Check() Check {
	if f.ready.Load() {
		return Check{Name: f.name, Status: StatusHealthy, Message: "ready"}
	}
	return Check{Name: f.name, Status: StatusUnhealthy, Message: "not ready"}
}

// MemoryCheck compares heap usage with a byte budget. Usage above 90% of
// the budget is degraded and above the budget unhealthy. A budget <= 0
// only reports usage. read defaults to runtime.ReadMemStats.
func MemoryCheck(budget int64, read func() uint64) CheckFunc {
	if read == nil {
		read = heapAlloc
	}
	return func() Check {
		used := read()
		check := Check{
			Name:    "memory",
			Status:  StatusHealthy,
			Message: "memory usage normal",
			Details: map[string]any{"heap_alloc_bytes": used},
		}
		if budget <= 0 {
			return check
		}

		usagePercent := float64(used) / float64(budget) * 100
		check.Details["budget_bytes"] = budget
		check.Details["usage_percent"] = usagePercent
		if usagePercent > 100 {
			check.Status = StatusUnhealthy
			check.Message = "memory budget exceeded"
		} else if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "high memory usage"
		}
		return check
	}
}

func heapAlloc() uint64 {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return mem.HeapAlloc
}
