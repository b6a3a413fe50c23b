package algorithms

import (
	"context"
	"errors"
	"maps"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// diamondGraph has two paths from 0 into 3, so node 3 receives two
// distances in the same superstep.
func diamondGraph(t *testing.T) graph.Graph {
	return buildTestGraph(t, graph.Natural, []edge{
		weighted(0, 1, 1),
		weighted(0, 2, 1),
		weighted(1, 3, 10),
		weighted(2, 3, 1),
	})
}

// randomUndirected builds a graph of n nodes with m random relationships.
func randomUndirected(t *testing.T, seed uint64, n, m int) graph.Graph {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	edges := make([]edge, 0, m)
	for len(edges) < m {
		from, to := rng.Uint64N(uint64(n)), rng.Uint64N(uint64(n))
		if from != to {
			edges = append(edges, edge{from: from, to: to})
		}
	}
	isolated := make([]uint64, n)
	for i := range isolated {
		isolated[i] = uint64(i)
	}
	return buildTestGraph(t, graph.Undirected, edges, isolated...)
}

// countComponents is a union-find reference over the stored relationships.
func countComponents(g graph.Graph) int {
	parent := make([]int64, g.NodeCount())
	for i := range parent {
		parent[i] = int64(i)
	}
	var find func(int64) int64
	find = func(x int64) int64 {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	count := len(parent)
	for node := int64(0); node < g.NodeCount(); node++ {
		g.ForEachRelationship(node, func(source, target int64) bool {
			if a, b := find(source), find(target); a != b {
				parent[a] = b
				count--
			}
			return true
		})
	}
	return count
}

func TestSingleSourceShortestPath_MessagingModes(t *testing.T) {
	tests := []struct {
		name      string
		messaging pregel.Messaging
	}{
		{"auto", pregel.MessagingAuto},
		{"plain", pregel.MessagingPlain},
		{"combined", pregel.MessagingCombined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultShortestPathOptions(0)
			opts.RelationshipWeightProperty = "cost"
			opts.Concurrency = 1
			opts.Messaging = tt.messaging

			result, err := SingleSourceShortestPath(context.Background(), diamondGraph(t), opts, quiet())
			if err != nil {
				t.Fatalf("SingleSourceShortestPath failed: %v", err)
			}

			want := map[uint64]float64{0: 0, 1: 1, 2: 1, 3: 2}
			if !maps.Equal(result.Distances, want) {
				t.Errorf("Distances = %v, want %v", result.Distances, want)
			}
			if got := result.Predecessors[3]; got != 2 {
				t.Errorf("Predecessor of 3 = %d, want 2", got)
			}
		})
	}
}

func TestConnectedComponents_MessagingModesAgree(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		g := randomUndirected(t, seed, 40, 30)
		want := countComponents(g)

		var byMode [2]map[uint64]int
		for i, mode := range []pregel.Messaging{pregel.MessagingPlain, pregel.MessagingCombined} {
			opts := DefaultCommunityOptions()
			opts.Concurrency = 3
			opts.Messaging = mode

			result, err := ConnectedComponents(context.Background(), g, opts, quiet())
			if err != nil {
				t.Fatalf("seed %d %s: ConnectedComponents failed: %v", seed, mode, err)
			}
			if len(result.Communities) != want {
				t.Errorf("seed %d %s: %d components, want %d", seed, mode, len(result.Communities), want)
			}
			byMode[i] = result.NodeCommunity
		}
		if !maps.Equal(byMode[0], byMode[1]) {
			t.Errorf("seed %d: PLAIN and COMBINED assign different components", seed)
		}
	}
}

func TestPageRank_MessagingModesAgree(t *testing.T) {
	g := buildTestGraph(t, graph.Natural, []edge{
		{from: 1, to: 4}, {from: 2, to: 4}, {from: 3, to: 4},
		{from: 4, to: 1}, {from: 1, to: 2}, {from: 2, to: 3},
	})

	scores := make(map[pregel.Messaging]map[uint64]float64)
	for _, mode := range []pregel.Messaging{pregel.MessagingPlain, pregel.MessagingCombined} {
		opts := DefaultPageRankOptions()
		opts.Concurrency = 2
		opts.Messaging = mode

		result, err := PageRank(context.Background(), g, opts, quiet())
		if err != nil {
			t.Fatalf("%s: PageRank failed: %v", mode, err)
		}
		if result.Run.Messaging != mode {
			t.Errorf("Messaging = %s, want %s", result.Run.Messaging, mode)
		}
		scores[mode] = result.Scores
	}

	plain, combined := scores[pregel.MessagingPlain], scores[pregel.MessagingCombined]
	if len(plain) != len(combined) {
		t.Fatalf("Score counts differ: %d vs %d", len(plain), len(combined))
	}
	for id, p := range plain {
		if math.Abs(p-combined[id]) > 1e-9 {
			t.Errorf("Score[%d]: PLAIN %v, COMBINED %v", id, p, combined[id])
		}
	}
}

func TestLabelPropagation_MessagingModes(t *testing.T) {
	g := buildTestGraph(t, graph.Undirected, []edge{
		{from: 1, to: 2}, {from: 2, to: 3}, {from: 3, to: 1},
	})

	opts := DefaultCommunityOptions()
	opts.Messaging = pregel.MessagingPlain
	result, err := LabelPropagation(context.Background(), g, opts, quiet())
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if result.Run.Messaging != pregel.MessagingPlain {
		t.Errorf("Messaging = %s, want PLAIN", result.Run.Messaging)
	}

	// Label propagation needs every label, so it has no reducer.
	opts.Messaging = pregel.MessagingCombined
	_, err = LabelPropagation(context.Background(), g, opts, quiet())
	if !errors.Is(err, pregel.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration for COMBINED, got %v", err)
	}
}
