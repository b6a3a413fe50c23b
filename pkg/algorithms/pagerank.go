package algorithms

import (
	"container/heap"
	"context"
	"math"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

const (
	pageRankKey = "pagerank"
	deltaKey    = "delta"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	pregel.Config `yaml:",inline"`

	DampingFactor float64 `yaml:"dampingFactor" validate:"gt=0,lt=1"`
	Tolerance     float64 `yaml:"tolerance" validate:"gte=0"`
	TopN          int     `yaml:"topN" validate:"min=0"`
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	cfg := pregel.DefaultConfig()
	cfg.MaxIterations = 100
	return PageRankOptions{
		Config:        cfg,
		DampingFactor: 0.85,
		Tolerance:     1e-6,
		TopN:          10,
	}
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     map[uint64]float64 // Original node ID -> PageRank score
	Iterations int                // Number of supersteps performed
	Converged  bool               // Whether algorithm converged
	TopNodes   []RankedNode       // Top N nodes by score
	Run        *pregel.Result
}

// RankedNode represents a node with its rank
type RankedNode struct {
	NodeID uint64
	Score  float64
}

// pageRank sends rank/degree along every relationship each superstep. The
// master computation stops the run once no score moved by more than the
// tolerance.
type pageRank struct {
	damping   float64
	tolerance float64
}

func (pageRank) Schema(pregel.Config) *pregel.Schema {
	return pregel.NewSchema().
		Add(pageRankKey, graph.TypeDouble).
		Add(deltaKey, graph.TypeDouble, pregel.Private)
}

func (pageRank) Init(ctx *pregel.InitContext) {
	ctx.SetDouble(pageRankKey, 1/float64(ctx.NodeCount()))
	ctx.SetDouble(deltaKey, math.Inf(1))
}

func (p pageRank) Compute(ctx *pregel.ComputeContext[float64], messages *pregel.Messages[float64]) error {
	rank := ctx.Double(pageRankKey)
	if !ctx.IsInitialSuperstep() {
		var sum float64
		for contribution := range messages.All() {
			sum += contribution
		}
		next := (1-p.damping)/float64(ctx.NodeCount()) + p.damping*sum
		ctx.SetDouble(deltaKey, math.Abs(next-rank))
		ctx.SetDouble(pageRankKey, next)
		rank = next
	}
	if degree := ctx.Degree(); degree > 0 {
		ctx.SendToNeighbors(rank / float64(degree))
	}
	return nil
}

func (pageRank) Reducer() pregel.Reducer[float64] {
	return pregel.SumReducer[float64]{}
}

func (p pageRank) MasterCompute(ctx *pregel.MasterComputeContext) bool {
	if ctx.Superstep() == 0 {
		return false
	}
	var maxDelta float64
	for _, d := range ctx.NodeValues().Doubles(deltaKey) {
		maxDelta = max(maxDelta, d)
	}
	return maxDelta < p.tolerance
}

// PageRank computes PageRank scores for all nodes in the graph. Scores are
// normalized to sum to 1.
func PageRank(ctx context.Context, g graph.Graph, opts PageRankOptions, runOpts ...pregel.Option) (*PageRankResult, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	comp := pageRank{damping: opts.DampingFactor, tolerance: opts.Tolerance}
	runOpts = append([]pregel.Option{pregel.WithAlgorithm("pagerank")}, runOpts...)
	run, err := pregel.Run[float64](ctx, g, comp, opts.Config, runOpts...)
	if err != nil {
		return nil, err
	}

	ids := originalIDs(g)
	ranks := run.NodeValues.Doubles(pageRankKey)

	// Normalize scores to sum to 1
	sum := 0.0
	for _, score := range ranks {
		sum += score
	}
	scores := make(map[uint64]float64, len(ranks))
	for node, score := range ranks {
		if sum > 0 {
			score /= sum
		}
		scores[ids[node]] = score
	}

	return &PageRankResult{
		Scores:     scores,
		Iterations: run.RanIterations,
		Converged:  run.DidConverge,
		TopNodes:   findTopNodes(scores, opts.TopN),
		Run:        run,
	}, nil
}

// rankedNodeHeap implements a min-heap for RankedNode by score, so the
// root is the weakest of the current top N.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }

func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].NodeID > h[j].NodeID
}

func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// findTopNodes returns the n highest scores in descending order. Ties are
// broken by ascending node id.
func findTopNodes(scores map[uint64]float64, n int) []RankedNode {
	if n <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, n)
	for nodeID, score := range scores {
		rn := RankedNode{NodeID: nodeID, Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if less(h[0], rn) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	result := make([]RankedNode, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}
	return result
}

// less orders ranked nodes the way the heap does
func less(a, b RankedNode) bool {
	return rankedNodeHeap{a, b}.Less(0, 1)
}
