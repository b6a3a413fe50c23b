package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// ErrPropertyTypeMismatch is returned when a node property is added with a
// type different from the one it was first seen with.
var ErrPropertyTypeMismatch = errors.New("node property type mismatch")

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithOrientation sets the projection applied to added relationships
func WithOrientation(o Orientation) BuilderOption {
	return func(b *Builder) {
		b.orientation = o
	}
}

// WithExpectedNodes pre-sizes the id map
func WithExpectedNodes(n int) BuilderOption {
	return func(b *Builder) {
		b.expectedNodes = n
	}
}

type pendingRelationship struct {
	source, target int64
	props          map[string]float64
}

type pendingProperty struct {
	node  int64
	value Value
}

// Builder accumulates nodes and relationships keyed by original ids and
// produces an immutable CSRGraph. A Builder is not safe for concurrent use.
type Builder struct {
	orientation   Orientation
	expectedNodes int
	idMap         *IDMap
	relationships []pendingRelationship
	relPropKeys   map[string]struct{}
	nodeProps     map[string][]pendingProperty
	nodePropTypes map[string]ValueType
}

// NewBuilder creates a graph builder
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		relPropKeys:   make(map[string]struct{}),
		nodeProps:     make(map[string][]pendingProperty),
		nodePropTypes: make(map[string]ValueType),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.idMap = newIDMap(b.expectedNodes)
	return b
}

// AddNode registers a node with optional properties. Adding the same
// original id again merges properties.
func (b *Builder) AddNode(original uint64, props map[string]Value) error {
	id := b.idMap.add(original)
	for key, value := range props {
		if existing, ok := b.nodePropTypes[key]; ok && existing != value.Type {
			return fmt.Errorf("%w: %q is %s, got %s for node %d", ErrPropertyTypeMismatch, key, existing, value.Type, original)
		}
		b.nodePropTypes[key] = value.Type
		b.nodeProps[key] = append(b.nodeProps[key], pendingProperty{node: id, value: value})
	}
	return nil
}

// AddRelationship adds a relationship between two original ids. Unknown
// endpoints are added as nodes without properties.
func (b *Builder) AddRelationship(source, target uint64, props map[string]float64) {
	s := b.idMap.add(source)
	t := b.idMap.add(target)
	for key := range props {
		b.relPropKeys[key] = struct{}{}
	}
	b.relationships = append(b.relationships, pendingRelationship{source: s, target: t, props: props})
}

// Build produces the graph. The builder must not be used afterwards.
func (b *Builder) Build() (*CSRGraph, error) {
	nodeCount := b.idMap.NodeCount()

	type projected struct {
		source, target int64
		rel            int
	}
	edges := make([]projected, 0, len(b.relationships))
	for i, rel := range b.relationships {
		switch b.orientation {
		case Natural:
			edges = append(edges, projected{rel.source, rel.target, i})
		case Reverse:
			edges = append(edges, projected{rel.target, rel.source, i})
		case Undirected:
			edges = append(edges, projected{rel.source, rel.target, i})
			edges = append(edges, projected{rel.target, rel.source, i})
		default:
			return nil, fmt.Errorf("unsupported orientation %s", b.orientation)
		}
	}

	// Group by source, then by target, keeping input order for ties so
	// parallel relationships stay stable.
	slices.SortStableFunc(edges, func(a, c projected) int {
		if a.source != c.source {
			if a.source < c.source {
				return -1
			}
			return 1
		}
		if a.target < c.target {
			return -1
		}
		if a.target > c.target {
			return 1
		}
		return 0
	})

	offsets := make([]int64, nodeCount+1)
	targets := make([]int64, len(edges))
	for i, e := range edges {
		offsets[e.source+1]++
		targets[i] = e.target
	}
	for i := int64(1); i <= nodeCount; i++ {
		offsets[i] += offsets[i-1]
	}

	relProps := make(map[string][]float64, len(b.relPropKeys))
	for key := range b.relPropKeys {
		col := make([]float64, len(edges))
		for i, e := range edges {
			v, ok := b.relationships[e.rel].props[key]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		relProps[key] = col
	}

	nodeProps := make(map[string]*propertyColumn, len(b.nodeProps))
	for key, pending := range b.nodeProps {
		vt := b.nodePropTypes[key]
		values := make([]Value, nodeCount)
		for i := range values {
			values[i] = Value{Type: vt}
		}
		for _, p := range pending {
			values[p.node] = p.value
		}
		nodeProps[key] = &propertyColumn{valueType: vt, values: values}
	}

	g := &CSRGraph{
		idMap:             b.idMap,
		orientation:       b.orientation,
		offsets:           offsets,
		targets:           targets,
		relProps:          relProps,
		nodeProps:         nodeProps,
		relationshipCount: int64(len(edges)),
	}

	b.relationships = nil
	b.nodeProps = nil
	return g, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
