package algorithms

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

const (
	distanceKey    = "distance"
	predecessorKey = "predecessor"
)

// ShortestPathOptions configures single source shortest paths. Without a
// RelationshipWeightProperty every relationship costs 1.
type ShortestPathOptions struct {
	pregel.Config `yaml:",inline"`

	Source uint64 `yaml:"source"`
}

// DefaultShortestPathOptions returns default shortest path configuration
func DefaultShortestPathOptions(source uint64) ShortestPathOptions {
	cfg := pregel.DefaultConfig()
	cfg.MaxIterations = 1000
	return ShortestPathOptions{Config: cfg, Source: source}
}

// ShortestPathResult contains distances from the source to every
// reachable node
type ShortestPathResult struct {
	Source       uint64
	Distances    map[uint64]float64 // Original node ID -> distance, reachable nodes only
	Predecessors map[uint64]uint64  // Original node ID -> previous node on a shortest path
	Iterations   int
	Converged    bool
	Run          *pregel.Result
}

// PathTo returns the node sequence from the source to target, or nil if
// target is unreachable.
func (r *ShortestPathResult) PathTo(target uint64) []uint64 {
	if _, ok := r.Distances[target]; !ok {
		return nil
	}
	path := []uint64{target}
	for node := target; node != r.Source; {
		prev, ok := r.Predecessors[node]
		if !ok || len(path) > len(r.Distances) {
			return nil
		}
		path = append(path, prev)
		node = prev
	}
	slices.Reverse(path)
	return path
}

// distanceMessage is a tentative distance offered by a neighbor
type distanceMessage struct {
	Distance float64
	From     int64
}

// shorterMessage keeps the smaller distance, then the smaller sender, so
// the chosen predecessor does not depend on arrival order.
func shorterMessage(current, message distanceMessage) distanceMessage {
	if message.Distance < current.Distance ||
		(message.Distance == current.Distance && message.From < current.From) {
		return message
	}
	return current
}

// singleSourceShortestPath relaxes distances along relationships. A node
// forwards its distance only when it improved.
type singleSourceShortestPath struct {
	source int64
}

func (singleSourceShortestPath) Schema(pregel.Config) *pregel.Schema {
	return pregel.NewSchema().
		Add(distanceKey, graph.TypeDouble).
		Add(predecessorKey, graph.TypeLong, pregel.Private)
}

func (s singleSourceShortestPath) Init(ctx *pregel.InitContext) {
	ctx.SetLong(predecessorKey, -1)
	if ctx.NodeID() == s.source {
		ctx.SetDouble(distanceKey, 0)
		return
	}
	ctx.SetDouble(distanceKey, math.Inf(1))
}

func (s singleSourceShortestPath) Compute(ctx *pregel.ComputeContext[distanceMessage], messages *pregel.Messages[distanceMessage]) error {
	distance := ctx.Double(distanceKey)
	improved := ctx.IsInitialSuperstep() && ctx.NodeID() == s.source

	best := s.Reducer().Identity()
	for msg := range messages.All() {
		best = shorterMessage(best, msg)
	}
	if best.Distance < distance {
		distance = best.Distance
		ctx.SetDouble(distanceKey, distance)
		ctx.SetLong(predecessorKey, best.From)
		improved = true
	}

	if improved {
		var err error
		ctx.ForEachWeightedNeighbor(func(target int64, weight float64) bool {
			if weight < 0 {
				err = fmt.Errorf("negative relationship weight %v to node %d", weight, target)
				return false
			}
			ctx.SendTo(target, distanceMessage{Distance: distance + weight, From: ctx.NodeID()})
			return true
		})
		if err != nil {
			return err
		}
	}
	ctx.VoteToHalt()
	return nil
}

func (singleSourceShortestPath) Reducer() pregel.Reducer[distanceMessage] {
	return pregel.ReducerFunc[distanceMessage]{
		Zero: distanceMessage{Distance: math.Inf(1), From: math.MaxInt64},
		Fn:   shorterMessage,
	}
}

// SingleSourceShortestPath computes shortest path distances from
// opts.Source. Negative weights abort the run with a ComputationError.
func SingleSourceShortestPath(ctx context.Context, g graph.Graph, opts ShortestPathOptions, runOpts ...pregel.Option) (*ShortestPathResult, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	source, ok := g.IDMap().ToMapped(opts.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSource, opts.Source)
	}

	runOpts = append([]pregel.Option{pregel.WithAlgorithm("sssp")}, runOpts...)
	run, err := pregel.Run[distanceMessage](ctx, g, singleSourceShortestPath{source: source}, opts.Config, runOpts...)
	if err != nil {
		return nil, err
	}

	ids := originalIDs(g)
	distances := run.NodeValues.Doubles(distanceKey)
	predecessors := run.NodeValues.Longs(predecessorKey)
	result := &ShortestPathResult{
		Source:       opts.Source,
		Distances:    make(map[uint64]float64),
		Predecessors: make(map[uint64]uint64),
		Iterations:   run.RanIterations,
		Converged:    run.DidConverge,
		Run:          run,
	}
	for node, d := range distances {
		if math.IsInf(d, 1) {
			continue
		}
		result.Distances[ids[node]] = d
		if p := predecessors[node]; p >= 0 {
			result.Predecessors[ids[node]] = ids[p]
		}
	}
	return result, nil
}
