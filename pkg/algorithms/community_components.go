package algorithms

import (
	"context"
	"math"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

const componentKey = "component"

// weaklyConnected propagates the smallest internal node id through each
// component. Nodes halt after every superstep and wake only when a smaller
// id arrives.
type weaklyConnected struct{}

func (weaklyConnected) Schema(pregel.Config) *pregel.Schema {
	return pregel.NewSchema().Add(componentKey, graph.TypeLong)
}

func (weaklyConnected) Init(ctx *pregel.InitContext) {
	ctx.SetLong(componentKey, ctx.NodeID())
}

func (weaklyConnected) Compute(ctx *pregel.ComputeContext[int64], messages *pregel.Messages[int64]) error {
	if ctx.IsInitialSuperstep() {
		ctx.SendToNeighbors(ctx.NodeID())
		ctx.VoteToHalt()
		return nil
	}

	current := ctx.Long(componentKey)
	candidate := current
	for msg := range messages.All() {
		candidate = min(candidate, msg)
	}
	if candidate < current {
		ctx.SetLong(componentKey, candidate)
		ctx.SendToNeighbors(candidate)
	}
	ctx.VoteToHalt()
	return nil
}

func (weaklyConnected) Reducer() pregel.Reducer[int64] {
	return pregel.MinReducer[int64]{Max: math.MaxInt64}
}

// ConnectedComponents finds all weakly connected components of an
// undirected graph.
func ConnectedComponents(ctx context.Context, g graph.Graph, opts CommunityOptions, runOpts ...pregel.Option) (*CommunityDetectionResult, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if err := requireUndirected(g); err != nil {
		return nil, err
	}

	runOpts = append([]pregel.Option{pregel.WithAlgorithm("wcc")}, runOpts...)
	run, err := pregel.Run[int64](ctx, g, weaklyConnected{}, opts.Config, runOpts...)
	if err != nil {
		return nil, err
	}

	result := communitiesFromLabels(g, run.NodeValues.Longs(componentKey))
	result.Iterations = run.RanIterations
	result.Converged = run.DidConverge
	result.Run = run
	return result, nil
}
