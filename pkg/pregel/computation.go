package pregel

// Computation is a vertex program. Compute is invoked once per superstep
// for every active node; a node is active unless it voted to halt and
// received no message.
type Computation[M any] interface {
	// Schema declares the node value slots of the computation
	Schema(cfg Config) *Schema
	Compute(ctx *ComputeContext[M], messages *Messages[M]) error
}

// Initializer is implemented by computations that set node values before
// the first superstep. Init runs for every node of a partition before any
// Compute of superstep 0 in that partition.
type Initializer interface {
	Init(ctx *InitContext)
}

// Reducing is implemented by computations whose messages can be combined.
// Under AUTO messaging its presence selects COMBINED.
type Reducing[M any] interface {
	Reducer() Reducer[M]
}

// RelationshipWeighted is implemented by computations that scale messages
// sent along relationships by the configured relationship weight.
type RelationshipWeighted[M any] interface {
	ApplyRelationshipWeight(message M, weight float64) M
}

// MasterComputation runs single-threaded after every superstep barrier.
// Returning true ends the run as converged.
type MasterComputation interface {
	MasterCompute(ctx *MasterComputeContext) bool
}

// Closer is implemented by computations holding resources for a run
type Closer interface {
	Close()
}
