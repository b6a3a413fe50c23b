package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// TestPageRank_EmptyGraph tests PageRank on empty graph
func TestPageRank_EmptyGraph(t *testing.T) {
	g := buildTestGraph(t, graph.Natural, nil)

	result, err := PageRank(context.Background(), g, DefaultPageRankOptions(), quiet())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}

	if len(result.Scores) != 0 {
		t.Errorf("Expected 0 scores for empty graph, got %d", len(result.Scores))
	}
	if !result.Converged {
		t.Error("Expected convergence for empty graph")
	}
}

// TestPageRank_Cycle checks that a cycle spreads rank evenly
func TestPageRank_Cycle(t *testing.T) {
	g := buildTestGraph(t, graph.Natural, []edge{
		{from: 1, to: 2}, {from: 2, to: 3}, {from: 3, to: 4}, {from: 4, to: 1},
	})

	result, err := PageRank(context.Background(), g, DefaultPageRankOptions(), quiet())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}

	if !result.Converged {
		t.Errorf("Expected convergence, ran %d iterations", result.Iterations)
	}
	for id, score := range result.Scores {
		if math.Abs(score-0.25) > 1e-9 {
			t.Errorf("Score[%d] = %v, want 0.25", id, score)
		}
	}
	if result.Run.Messaging != pregel.MessagingCombined {
		t.Errorf("Messaging = %s, want COMBINED", result.Run.Messaging)
	}
}

// TestPageRank_Star checks that the hub of an in-star ranks first
func TestPageRank_Star(t *testing.T) {
	var edges []edge
	for leaf := uint64(11); leaf <= 15; leaf++ {
		edges = append(edges, edge{from: leaf, to: 10})
	}
	g := buildTestGraph(t, graph.Natural, edges)

	opts := DefaultPageRankOptions()
	opts.TopN = 3
	result, err := PageRank(context.Background(), g, opts, quiet())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}

	if len(result.TopNodes) != 3 {
		t.Fatalf("TopNodes has %d entries, want 3", len(result.TopNodes))
	}
	if result.TopNodes[0].NodeID != 10 {
		t.Errorf("TopNodes[0] = %d, want hub 10", result.TopNodes[0].NodeID)
	}
	// leaves tie; the smaller ids win
	if result.TopNodes[1].NodeID != 11 || result.TopNodes[2].NodeID != 12 {
		t.Errorf("TopNodes = %+v, want leaves 11 and 12 after the hub", result.TopNodes)
	}

	var sum float64
	for _, score := range result.Scores {
		sum += score
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Scores sum to %v, want 1", sum)
	}
}

// TestPageRank_Concurrency checks that partitioning does not change scores
func TestPageRank_Concurrency(t *testing.T) {
	var edges []edge
	for i := uint64(0); i < 200; i++ {
		edges = append(edges, edge{from: i, to: (i*7 + 3) % 200}, edge{from: i, to: (i + 1) % 200})
	}
	g := buildTestGraph(t, graph.Natural, edges)

	run := func(concurrency int) map[uint64]float64 {
		opts := DefaultPageRankOptions()
		opts.Concurrency = concurrency
		result, err := PageRank(context.Background(), g, opts, quiet())
		if err != nil {
			t.Fatalf("PageRank failed: %v", err)
		}
		return result.Scores
	}

	want := run(1)
	got := run(6)
	for id, score := range want {
		// summation order differs between partitionings
		if math.Abs(got[id]-score) > 1e-12 {
			t.Errorf("Score[%d] = %v with 6 workers, %v with 1", id, got[id], score)
		}
	}
}

func TestPageRank_InvalidOptions(t *testing.T) {
	g := buildTestGraph(t, graph.Natural, []edge{{from: 1, to: 2}})

	for _, damping := range []float64{0, 1, 1.5} {
		opts := DefaultPageRankOptions()
		opts.DampingFactor = damping
		_, err := PageRank(context.Background(), g, opts, quiet())
		if !errors.Is(err, pregel.ErrInvalidConfiguration) {
			t.Errorf("damping %v: error = %v, want ErrInvalidConfiguration", damping, err)
		}
	}

	opts := DefaultPageRankOptions()
	opts.Concurrency = 0
	if _, err := PageRank(context.Background(), g, opts, quiet()); !errors.Is(err, pregel.ErrInvalidConfiguration) {
		t.Errorf("zero concurrency: error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestFindTopNodes(t *testing.T) {
	scores := map[uint64]float64{1: 0.1, 2: 0.4, 3: 0.3, 4: 0.4, 5: 0.05}

	top := findTopNodes(scores, 3)
	want := []uint64{2, 4, 3}
	if len(top) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(top), len(want))
	}
	for i, id := range want {
		if top[i].NodeID != id {
			t.Errorf("top[%d] = %d, want %d", i, top[i].NodeID, id)
		}
	}

	if got := findTopNodes(scores, 0); got != nil {
		t.Errorf("findTopNodes(n=0) = %v, want nil", got)
	}
	if got := findTopNodes(scores, 10); len(got) != 5 {
		t.Errorf("findTopNodes(n=10) returned %d nodes, want 5", len(got))
	}
}
