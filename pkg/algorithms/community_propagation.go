package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

const (
	labelKey   = "label"
	changedKey = "changed"
)

// labelPropagation adopts the most frequent label among a node and its
// neighbors, preferring the smallest label on ties. Every node sends its
// label every superstep; the master computation ends the run once a
// superstep changed no label.
type labelPropagation struct{}

func (labelPropagation) Schema(pregel.Config) *pregel.Schema {
	return pregel.NewSchema().
		Add(labelKey, graph.TypeLong).
		Add(changedKey, graph.TypeLong, pregel.Private)
}

func (labelPropagation) Init(ctx *pregel.InitContext) {
	ctx.SetLong(labelKey, ctx.NodeID())
}

func (labelPropagation) Compute(ctx *pregel.ComputeContext[int64], messages *pregel.Messages[int64]) error {
	label := ctx.Long(labelKey)
	ctx.SetLong(changedKey, 0)

	if !ctx.IsInitialSuperstep() && !messages.IsEmpty() {
		counts := map[int64]int{label: 1}
		for msg := range messages.All() {
			counts[msg]++
		}
		best, bestCount := label, 0
		for candidate, count := range counts {
			if count > bestCount || (count == bestCount && candidate < best) {
				best, bestCount = candidate, count
			}
		}
		if best != label {
			label = best
			ctx.SetLong(labelKey, label)
			ctx.SetLong(changedKey, 1)
		}
	}

	ctx.SendToNeighbors(label)
	return nil
}

func (labelPropagation) MasterCompute(ctx *pregel.MasterComputeContext) bool {
	if ctx.Superstep() == 0 {
		return false
	}
	for _, changed := range ctx.NodeValues().Longs(changedKey) {
		if changed != 0 {
			return false
		}
	}
	return true
}

// LabelPropagation performs label propagation for community detection.
// Messages are not combined, since every node needs the full label
// multiset of its neighborhood.
func LabelPropagation(ctx context.Context, g graph.Graph, opts CommunityOptions, runOpts ...pregel.Option) (*CommunityDetectionResult, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	runOpts = append([]pregel.Option{pregel.WithAlgorithm("label_propagation")}, runOpts...)
	run, err := pregel.Run[int64](ctx, g, labelPropagation{}, opts.Config, runOpts...)
	if err != nil {
		return nil, err
	}

	result := communitiesFromLabels(g, run.NodeValues.Longs(labelKey))
	result.Iterations = run.RanIterations
	result.Converged = run.DidConverge
	result.Run = run
	return result, nil
}
