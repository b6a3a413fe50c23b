// Package algorithms provides graph algorithms expressed as pregel
// computations. Every algorithm takes a graph.Graph, runs on the engine
// and reports results keyed by original node ids.
package algorithms

import (
	"errors"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
	"github.com/dd0wney/cluso-pregel/pkg/validation"
)

// ErrUndirectedRequired is returned by algorithms that need every
// relationship in both directions.
var ErrUndirectedRequired = errors.New("algorithm requires an undirected graph")

// ErrUnknownSource is returned when a source node is not part of the graph
var ErrUnknownSource = errors.New("source node not found")

// validateOptions checks the validate tags of an options struct, including
// its embedded pregel.Config.
func validateOptions(opts any) error {
	if err := validation.ValidateStruct(opts); err != nil {
		return &pregel.ConfigurationError{Cause: err}
	}
	return nil
}

func requireUndirected(g graph.Graph) error {
	if g.Orientation() != graph.Undirected {
		return &pregel.ConfigurationError{Field: "orientation", Value: g.Orientation(), Cause: ErrUndirectedRequired}
	}
	return nil
}

// originalIDs returns the original id of every node in internal order
func originalIDs(g graph.Graph) []uint64 {
	n := g.NodeCount()
	ids := make([]uint64, n)
	idMap := g.IDMap()
	for node := int64(0); node < n; node++ {
		ids[node] = idMap.ToOriginal(node)
	}
	return ids
}
