package pregel

import (
	"fmt"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// nodeContext is the view of one node shared by InitContext and ComputeContext
type nodeContext struct {
	graph  graph.Graph
	values *NodeValue
	config Config
	node   int64
}

// NodeID returns the internal id of the current node
func (c *nodeContext) NodeID() int64 { return c.node }

// OriginalNodeID returns the external id of the current node
func (c *nodeContext) OriginalNodeID() uint64 {
	return c.graph.IDMap().ToOriginal(c.node)
}

// NodeCount returns the number of nodes in the graph
func (c *nodeContext) NodeCount() int64 { return c.graph.NodeCount() }

// RelationshipCount returns the number of relationships in the graph
func (c *nodeContext) RelationshipCount() int64 { return c.graph.RelationshipCount() }

// Degree returns the degree of the current node
func (c *nodeContext) Degree() int { return c.graph.Degree(c.node) }

// Config returns the configuration of the run
func (c *nodeContext) Config() Config { return c.config }

// NodeProperties returns a node property column of the input graph
func (c *nodeContext) NodeProperties(key string) (graph.NodeProperties, bool) {
	return c.graph.NodeProperties(key)
}

// NodePropertyKeys returns the node property keys of the input graph
func (c *nodeContext) NodePropertyKeys() []string {
	return c.graph.NodePropertyKeys()
}

func (c *nodeContext) Double(key string) float64 { return c.values.Double(key, c.node) }

func (c *nodeContext) Long(key string) int64 { return c.values.Long(key, c.node) }

func (c *nodeContext) LongArray(key string) []int64 { return c.values.LongArray(key, c.node) }

func (c *nodeContext) DoubleArray(key string) []float64 {
	return c.values.DoubleArray(key, c.node)
}

func (c *nodeContext) SetDouble(key string, v float64) { c.values.SetDouble(key, c.node, v) }

func (c *nodeContext) SetLong(key string, v int64) { c.values.SetLong(key, c.node, v) }

func (c *nodeContext) SetLongArray(key string, v []int64) {
	c.values.SetLongArray(key, c.node, v)
}

func (c *nodeContext) SetDoubleArray(key string, v []float64) {
	c.values.SetDoubleArray(key, c.node, v)
}

// InitContext is passed to Initializer.Init
type InitContext struct {
	nodeContext
}

// ComputeContext is passed to Computation.Compute. It is bound to one node
// for the duration of the call and must not be retained.
type ComputeContext[M any] struct {
	nodeContext
	step *computeStep[M]
}

// Superstep returns the current superstep, starting at 0
func (c *ComputeContext[M]) Superstep() int {
	return c.step.iteration
}

// IsInitialSuperstep reports whether this is superstep 0
func (c *ComputeContext[M]) IsInitialSuperstep() bool {
	return c.step.iteration == 0
}

// VoteToHalt marks the current node inactive until it receives a message
func (c *ComputeContext[M]) VoteToHalt() {
	c.step.votes.Set(c.node)
}

// SendTo sends message to target, delivered in the next superstep. A
// target outside the graph is a programming error and aborts the run.
func (c *ComputeContext[M]) SendTo(target int64, message M) {
	if target < 0 || target >= c.graph.NodeCount() {
		panic(fmt.Sprintf("pregel: message target %d outside [0, %d)", target, c.graph.NodeCount()))
	}
	c.step.send(target, message)
}

// SendToNeighbors sends message along every relationship of the current
// node. With a relationship weight property configured and a computation
// implementing RelationshipWeighted, each copy is scaled by the weight.
func (c *ComputeContext[M]) SendToNeighbors(message M) {
	step := c.step
	if step.weighted != nil {
		c.graph.ForEachWeightedRelationship(c.node, c.config.RelationshipWeightProperty, defaultRelationshipWeight,
			func(_, target int64, weight float64) bool {
				step.send(target, step.weighted.ApplyRelationshipWeight(message, weight))
				return true
			})
		return
	}
	c.graph.ForEachRelationship(c.node, func(_, target int64) bool {
		step.send(target, message)
		return true
	})
}

// ForEachNeighbor visits every relationship target of the current node,
// including duplicates of parallel relationships.
func (c *ComputeContext[M]) ForEachNeighbor(fn func(target int64) bool) {
	c.graph.ForEachRelationship(c.node, func(_, target int64) bool {
		return fn(target)
	})
}

// ForEachDistinctNeighbor visits every relationship target once. It relies
// on adjacency being sorted by target.
func (c *ComputeContext[M]) ForEachDistinctNeighbor(fn func(target int64) bool) {
	prev := int64(-1)
	c.graph.ForEachRelationship(c.node, func(_, target int64) bool {
		if target == prev {
			return true
		}
		prev = target
		return fn(target)
	})
}

// ForEachWeightedNeighbor visits every relationship target together with
// the configured relationship weight, or 1 when the run is unweighted.
func (c *ComputeContext[M]) ForEachWeightedNeighbor(fn func(target int64, weight float64) bool) {
	if !c.config.IsWeighted() {
		c.ForEachNeighbor(func(target int64) bool {
			return fn(target, defaultRelationshipWeight)
		})
		return
	}
	c.graph.ForEachWeightedRelationship(c.node, c.config.RelationshipWeightProperty, defaultRelationshipWeight,
		func(_, target int64, weight float64) bool {
			return fn(target, weight)
		})
}

// defaultRelationshipWeight is reported for relationships without a value
const defaultRelationshipWeight = 1.0

// MasterComputeContext is passed to MasterComputation.MasterCompute. It
// runs at the barrier, so any node value may be read or written.
type MasterComputeContext struct {
	graph     graph.Graph
	values    *NodeValue
	config    Config
	superstep int
}

// Superstep returns the superstep that just completed
func (c *MasterComputeContext) Superstep() int { return c.superstep }

// NodeCount returns the number of nodes in the graph
func (c *MasterComputeContext) NodeCount() int64 { return c.graph.NodeCount() }

// Config returns the configuration of the run
func (c *MasterComputeContext) Config() Config { return c.config }

// NodeValues returns the value store
func (c *MasterComputeContext) NodeValues() *NodeValue { return c.values }

// ForEachNode visits every node id in ascending order until fn returns false
func (c *MasterComputeContext) ForEachNode(fn func(node int64) bool) {
	n := c.graph.NodeCount()
	for node := int64(0); node < n; node++ {
		if !fn(node) {
			return
		}
	}
}

func (c *MasterComputeContext) Double(key string, node int64) float64 {
	return c.values.Double(key, node)
}

func (c *MasterComputeContext) Long(key string, node int64) int64 {
	return c.values.Long(key, node)
}

func (c *MasterComputeContext) SetDouble(key string, node int64, v float64) {
	c.values.SetDouble(key, node, v)
}

func (c *MasterComputeContext) SetLong(key string, node int64, v int64) {
	c.values.SetLong(key, node, v)
}
