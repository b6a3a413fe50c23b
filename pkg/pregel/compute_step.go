package pregel

import (
	"sync/atomic"

	"github.com/dd0wney/cluso-pregel/pkg/bitset"
	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/partition"
)

// computeStep runs the computation over one partition for one superstep.
// Steps are created once per run and re-initialised every superstep.
type computeStep[M any] struct {
	partition   partition.Partition
	strategy    partition.Strategy
	graph       graph.Graph
	computation Computation[M]
	initializer Initializer
	weighted    RelationshipWeighted[M]
	values      *NodeValue
	messenger   Messenger[M]
	votes       *bitset.AtomicBitSet
	aborted     *atomic.Bool

	iteration    int
	sentMessage  bool
	messagesSent int64
	activeNodes  int64

	messages Messages[M]
	ctx      ComputeContext[M]
}

func newComputeStep[M any](c *computer[M], p partition.Partition) *computeStep[M] {
	s := &computeStep[M]{
		partition:   p,
		strategy:    c.config.Partitioning,
		graph:       c.graph,
		computation: c.computation,
		initializer: c.initializer,
		weighted:    c.weighted,
		values:      c.values,
		messenger:   c.messenger,
		votes:       c.votes,
		aborted:     &c.aborted,
	}
	s.ctx = ComputeContext[M]{
		nodeContext: nodeContext{graph: c.graph, values: c.values, config: c.config},
		step:        s,
	}
	return s
}

// init prepares the step for superstep iteration
func (s *computeStep[M]) init(iteration int) {
	s.iteration = iteration
	s.sentMessage = false
	s.messagesSent = 0
	s.activeNodes = 0
}

// hasSendMessage reports whether any node of the partition sent a message
// during the last run.
func (s *computeStep[M]) hasSendMessage() bool {
	return s.sentMessage
}

func (s *computeStep[M]) send(target int64, message M) {
	s.messenger.Send(target, message)
	s.sentMessage = true
	s.messagesSent++
}

// run processes every node of the partition. A node is invoked if it has
// not voted to halt or if it received a message; in the latter case its
// vote is cleared first. The first failure of any step aborts the others.
func (s *computeStep[M]) run() (err error) {
	node := s.partition.Start
	defer func() {
		if r := recover(); r != nil {
			err = s.fail(node, &panicError{value: r})
		}
	}()

	if s.iteration == 0 && s.initializer != nil {
		initCtx := InitContext{nodeContext: s.ctx.nodeContext}
		for node = s.partition.Start; node < s.partition.End(); node++ {
			initCtx.node = node
			s.initializer.Init(&initCtx)
		}
	}

	for node = s.partition.Start; node < s.partition.End(); node++ {
		if s.aborted.Load() {
			return nil
		}
		if s.votes.Get(node) {
			if !s.messenger.HasMessages(node) {
				continue
			}
			s.votes.Clear(node)
		}

		s.messenger.Receive(node, &s.messages)
		s.activeNodes++
		s.ctx.node = node
		if err := s.computation.Compute(&s.ctx, &s.messages); err != nil {
			return s.fail(node, err)
		}
	}
	return nil
}

func (s *computeStep[M]) fail(node int64, cause error) error {
	s.aborted.Store(true)
	cerr := &ComputationError{
		Superstep: s.iteration,
		NodeID:    node,
		Partition: s.partition,
		Strategy:  s.strategy,
		Cause:     cause,
	}
	if ids := s.graph.IDMap(); ids != nil && s.partition.Contains(node) {
		cerr.OriginalNodeID = ids.ToOriginal(node)
	}
	return cerr
}
