// Package pregel implements a vertex-centric bulk synchronous parallel
// graph computation engine.
//
// A run plans partitions of the node id space once, then repeats
// supersteps: every partition is computed concurrently on a worker pool,
// messages sent in superstep k are delivered in superstep k+1, and the run
// converges when no message was sent and every node voted to halt.
package pregel

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/parallel"
	"github.com/dd0wney/cluso-pregel/pkg/partition"
)

// Status is the terminal outcome of a run
type Status int

const (
	// Converged means no messages were pending and every node halted, or
	// the master computation ended the run.
	Converged Status = iota
	// MaxIterationsReached means the iteration bound ended the run
	MaxIterationsReached
	// Cancelled means the context was done before convergence
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a run
type Result struct {
	RunID         string
	NodeValues    *NodeValue
	DidConverge   bool
	RanIterations int
	Status        Status
	Messaging     Messaging
	Partitions    []partition.Partition
	Estimate      MemoryEstimate
	Duration      time.Duration
}

type runOptions struct {
	logger    logging.Logger
	listeners []ProgressListener
	algorithm string
	runID     string
}

// Option customises a run
type Option func(*runOptions)

// WithLogger sets the logger. The default is logging.DefaultLogger().
func WithLogger(logger logging.Logger) Option {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener adds a progress listener
func WithListener(listener ProgressListener) Option {
	return func(o *runOptions) {
		if listener != nil {
			o.listeners = append(o.listeners, listener)
		}
	}
}

// WithAlgorithm names the computation in logs, stats and metrics
func WithAlgorithm(name string) Option {
	return func(o *runOptions) {
		o.algorithm = name
	}
}

// WithRunID overrides the generated run id
func WithRunID(id string) Option {
	return func(o *runOptions) {
		o.runID = id
	}
}

// Run executes comp on g until it converges, reaches cfg.MaxIterations or
// ctx is done. Cancellation is reported through Result.Status, not as an
// error. Configuration problems are returned as *ConfigurationError or
// *OverflowRiskError before any superstep runs, and a failing computation
// as *ComputationError with no result.
func Run[M any](ctx context.Context, g graph.Graph, comp Computation[M], cfg Config, opts ...Option) (*Result, error) {
	o := runOptions{algorithm: "custom"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.DefaultLogger()
	}
	if o.runID == "" {
		o.runID = uuid.New().String()
	}
	logger := o.logger.With(logging.Component("pregel"), logging.RunID(o.runID), logging.Algorithm(o.algorithm))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schema := comp.Schema(cfg)
	if schema == nil {
		return nil, &ConfigurationError{Field: "schema", Cause: errors.New("computation returned no schema")}
	}
	if err := schema.Err(); err != nil {
		return nil, &ConfigurationError{Field: "schema", Cause: err}
	}
	if cfg.IsWeighted() && !g.HasRelationshipProperty(cfg.RelationshipWeightProperty) {
		return nil, &ConfigurationError{
			Field: "relationshipWeightProperty",
			Value: cfg.RelationshipWeightProperty,
			Cause: errors.New("graph has no such relationship property"),
		}
	}
	mode, reducer, err := resolveMessaging(cfg.Messaging, comp)
	if err != nil {
		return nil, err
	}

	nodeCount, relCount := g.NodeCount(), g.RelationshipCount()
	var zero M
	est, estOK := Estimate(nodeCount, relCount, schema, mode, int64(unsafe.Sizeof(zero)))
	if err := checkOverflowRisk(cfg, nodeCount, relCount, est, estOK); err != nil {
		logger.Error("pregel run refused", logging.Error(err))
		return nil, err
	}

	result := &Result{RunID: o.runID, Messaging: mode, Estimate: est}
	if nodeCount == 0 {
		result.NodeValues = NewNodeValue(schema, 0)
		result.DidConverge = true
		result.Status = Converged
		notifyFinish(o, result, nil)
		return result, nil
	}

	pool, err := parallel.NewWorkerPool(cfg.Concurrency, parallel.WithLogger(logger))
	if err != nil {
		return nil, &ConfigurationError{Field: "concurrency", Value: cfg.Concurrency, Cause: err}
	}
	defer pool.Close()

	var messenger Messenger[M]
	if mode == MessagingCombined {
		messenger = NewReducingMessenger(nodeCount, reducer)
	} else {
		messenger = NewQueueMessenger[M](nodeCount)
	}

	c := newComputer(g, comp, cfg, schema, messenger, pool)
	defer c.release()
	if err := c.initComputation(); err != nil {
		return nil, err
	}
	result.NodeValues = c.values
	result.Partitions = c.partitions

	logger.Info("pregel run started",
		logging.Int64("node_count", nodeCount),
		logging.Int64("relationship_count", relCount),
		logging.Int("concurrency", cfg.Concurrency),
		logging.Int("partitions", len(c.partitions)),
		logging.Strategy(cfg.Partitioning.String()),
		logging.String("messaging", mode.String()),
		logging.Int64("estimated_bytes", est.Total),
	)
	timer := logging.StartTimer(logger, "pregel run finished")

	status := MaxIterationsReached
	for iteration := 0; iteration < cfg.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			status = Cancelled
			break
		}

		start := time.Now()
		c.initIteration(iteration)
		if err := c.runIteration(); err != nil {
			var cerr *ComputationError
			if !errors.As(err, &cerr) {
				err = fmt.Errorf("superstep %d: %w", iteration, err)
			}
			result.Duration = timer.Elapsed()
			timer.EndError(err)
			notifyFinish(o, result, err)
			return nil, err
		}
		result.RanIterations = iteration + 1

		active, sent := c.stats()
		stats := SuperstepStats{
			RunID:         o.runID,
			Algorithm:     o.algorithm,
			Superstep:     iteration,
			MaxIterations: cfg.MaxIterations,
			ActiveNodes:   active,
			MessagesSent:  sent,
			Duration:      time.Since(start),
		}
		logger.Debug("superstep completed",
			logging.Superstep(iteration),
			logging.Int64("active_nodes", active),
			logging.Int64("messages_sent", sent),
			logging.Latency(stats.Duration),
		)
		for _, l := range o.listeners {
			l.OnSuperstep(stats)
		}

		if c.masterCompute() || c.hasConverged() {
			status = Converged
			break
		}
	}

	result.Status = status
	result.DidConverge = status == Converged
	result.Duration = timer.Elapsed()
	timer.End(
		logging.String("status", status.String()),
		logging.Int("ran_iterations", result.RanIterations),
	)
	notifyFinish(o, result, nil)
	return result, nil
}

func resolveMessaging[M any](requested Messaging, comp Computation[M]) (Messaging, Reducer[M], error) {
	var reducer Reducer[M]
	if r, ok := comp.(Reducing[M]); ok {
		reducer = r.Reducer()
	}
	switch requested {
	case MessagingPlain:
		return MessagingPlain, nil, nil
	case MessagingCombined:
		if reducer == nil {
			return 0, nil, &ConfigurationError{
				Field: "messaging",
				Value: requested,
				Cause: errors.New("computation provides no reducer"),
			}
		}
		return MessagingCombined, reducer, nil
	default:
		if reducer != nil {
			return MessagingCombined, reducer, nil
		}
		return MessagingPlain, nil, nil
	}
}

func notifyFinish(o runOptions, result *Result, err error) {
	summary := RunSummary{
		RunID:         result.RunID,
		Algorithm:     o.algorithm,
		Status:        result.Status,
		RanIterations: result.RanIterations,
		Duration:      result.Duration,
		Err:           err,
	}
	for _, l := range o.listeners {
		l.OnFinish(summary)
	}
}
