package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

type edge struct {
	from, to uint64
	props    map[string]float64
}

// buildTestGraph creates a graph from original ids. Nodes listed in
// isolated are added even without relationships.
func buildTestGraph(t *testing.T, orientation graph.Orientation, edges []edge, isolated ...uint64) graph.Graph {
	t.Helper()
	b := graph.NewBuilder(graph.WithOrientation(orientation))
	for _, e := range edges {
		b.AddRelationship(e.from, e.to, e.props)
	}
	for _, id := range isolated {
		if err := b.AddNode(id, nil); err != nil {
			t.Fatalf("AddNode(%d): %v", id, err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func quiet() pregel.Option {
	return pregel.WithLogger(logging.NewNopLogger())
}
