package pregel

import (
	"time"
)

// SuperstepStats describes one completed superstep
type SuperstepStats struct {
	RunID         string
	Algorithm     string
	Superstep     int
	MaxIterations int
	ActiveNodes   int64
	MessagesSent  int64
	Duration      time.Duration
}

// RunSummary describes a finished run. Err is set when the run failed
// after it started.
type RunSummary struct {
	RunID         string
	Algorithm     string
	Status        Status
	RanIterations int
	Duration      time.Duration
	Err           error
}

// ProgressListener observes a run. Callbacks are invoked from the
// goroutine calling Run, at the superstep barrier.
type ProgressListener interface {
	OnSuperstep(stats SuperstepStats)
	OnFinish(summary RunSummary)
}

// ListenerFuncs adapts functions to a ProgressListener. Nil fields are
// skipped.
type ListenerFuncs struct {
	Superstep func(SuperstepStats)
	Finish    func(RunSummary)
}

func (f ListenerFuncs) OnSuperstep(stats SuperstepStats) {
	if f.Superstep != nil {
		f.Superstep(stats)
	}
}

func (f ListenerFuncs) OnFinish(summary RunSummary) {
	if f.Finish != nil {
		f.Finish(summary)
	}
}
