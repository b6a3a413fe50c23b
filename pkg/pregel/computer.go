package pregel

import (
	"sync/atomic"

	"github.com/dd0wney/cluso-pregel/pkg/bitset"
	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/parallel"
	"github.com/dd0wney/cluso-pregel/pkg/partition"
)

// computer owns the shared state of one run: value store, messenger, vote
// register, partitions and the compute steps bound to them.
type computer[M any] struct {
	config      Config
	graph       graph.Graph
	computation Computation[M]
	initializer Initializer
	weighted    RelationshipWeighted[M]
	master      MasterComputation

	values    *NodeValue
	messenger Messenger[M]
	votes     *bitset.AtomicBitSet
	pool      *parallel.WorkerPool

	partitions []partition.Partition
	steps      []*computeStep[M]
	tasks      []parallel.Task
	aborted    atomic.Bool
	iteration  int
}

func newComputer[M any](g graph.Graph, comp Computation[M], cfg Config, schema *Schema, messenger Messenger[M], pool *parallel.WorkerPool) *computer[M] {
	c := &computer[M]{
		config:      cfg,
		graph:       g,
		computation: comp,
		values:      NewNodeValue(schema, g.NodeCount()),
		messenger:   messenger,
		votes:       bitset.New(g.NodeCount()),
		pool:        pool,
	}
	if initializer, ok := comp.(Initializer); ok {
		c.initializer = initializer
	}
	if w, ok := comp.(RelationshipWeighted[M]); ok && cfg.IsWeighted() {
		c.weighted = w
	}
	if m, ok := comp.(MasterComputation); ok {
		c.master = m
	}
	return c
}

// initComputation plans the partitions and creates one step per
// partition. It runs once; partitions are reused by every superstep.
func (c *computer[M]) initComputation() error {
	partitions, err := partition.Plan(c.config.Partitioning, c.config.Concurrency, c.graph)
	if err != nil {
		return &ConfigurationError{Field: "partitioning", Value: c.config.Partitioning, Cause: err}
	}
	c.partitions = partitions
	c.steps = make([]*computeStep[M], len(partitions))
	c.tasks = make([]parallel.Task, len(partitions))
	for i, p := range partitions {
		step := newComputeStep(c, p)
		c.steps[i] = step
		c.tasks[i] = step.run
	}
	return nil
}

func (c *computer[M]) initIteration(iteration int) {
	c.iteration = iteration
	for _, step := range c.steps {
		step.init(iteration)
	}
}

// runIteration runs every step and waits at the barrier. Messages sent
// during the iteration become readable only after the swap.
func (c *computer[M]) runIteration() error {
	err := c.pool.RunAll(c.tasks)
	c.messenger.SwapBuffers()
	return err
}

// masterCompute runs the master computation, if any, at the barrier
func (c *computer[M]) masterCompute() bool {
	if c.master == nil {
		return false
	}
	return c.master.MasterCompute(&MasterComputeContext{
		graph:     c.graph,
		values:    c.values,
		config:    c.config,
		superstep: c.iteration,
	})
}

// hasConverged is true iff no step sent a message in the completed
// superstep and every node voted to halt.
func (c *computer[M]) hasConverged() bool {
	for _, step := range c.steps {
		if step.hasSendMessage() {
			return false
		}
	}
	return c.votes.AllSet()
}

// stats aggregates the per-step counters of the completed superstep
func (c *computer[M]) stats() (active, sent int64) {
	for _, step := range c.steps {
		active += step.activeNodes
		sent += step.messagesSent
	}
	return active, sent
}

func (c *computer[M]) release() {
	if closer, ok := c.computation.(Closer); ok {
		closer.Close()
	}
}
