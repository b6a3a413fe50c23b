package pregel

import (
	"math/rand"
	"testing"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
)

// buildGraph creates a graph whose original ids equal the dense ids 0..n-1
func buildGraph(t *testing.T, nodeCount int, edges [][2]uint64, opts ...graph.BuilderOption) *graph.CSRGraph {
	t.Helper()
	b := graph.NewBuilder(opts...)
	for i := 0; i < nodeCount; i++ {
		if err := b.AddNode(uint64(i), nil); err != nil {
			t.Fatalf("AddNode(%d): %v", i, err)
		}
	}
	for _, e := range edges {
		b.AddRelationship(e[0], e[1], nil)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func cycle(n int) [][2]uint64 {
	edges := make([][2]uint64, n)
	for i := 0; i < n; i++ {
		edges[i] = [2]uint64{uint64(i), uint64((i + 1) % n)}
	}
	return edges
}

func randomEdges(seed int64, nodeCount, relCount int) [][2]uint64 {
	rng := rand.New(rand.NewSource(seed))
	edges := make([][2]uint64, relCount)
	for i := range edges {
		edges[i] = [2]uint64{uint64(rng.Intn(nodeCount)), uint64(rng.Intn(nodeCount))}
	}
	return edges
}

func testConfig(concurrency, maxIterations int) Config {
	cfg := DefaultConfig()
	cfg.Concurrency = concurrency
	cfg.MaxIterations = maxIterations
	return cfg
}

func quiet() Option {
	return WithLogger(logging.NewNopLogger())
}
