package graph

import "math"

// CSRGraph is an immutable compressed-sparse-row graph
type CSRGraph struct {
	idMap       *IDMap
	orientation Orientation
	offsets     []int64 // len nodeCount+1
	targets     []int64
	relProps    map[string][]float64
	nodeProps   map[string]*propertyColumn
	// relationshipCount counts stored relationships, so every undirected
	// input relationship counts twice.
	relationshipCount int64
}

var _ Graph = (*CSRGraph)(nil)

// NodeCount returns the number of nodes
func (g *CSRGraph) NodeCount() int64 {
	return g.idMap.NodeCount()
}

// RelationshipCount returns the number of stored relationships
func (g *CSRGraph) RelationshipCount() int64 {
	return g.relationshipCount
}

// Degree returns the out-degree of node
func (g *CSRGraph) Degree(node int64) int {
	return int(g.offsets[node+1] - g.offsets[node])
}

// ForEachRelationship visits every relationship of node in ascending target order
func (g *CSRGraph) ForEachRelationship(node int64, fn RelationshipConsumer) {
	for i := g.offsets[node]; i < g.offsets[node+1]; i++ {
		if !fn(node, g.targets[i]) {
			return
		}
	}
}

// ForEachWeightedRelationship visits every relationship of node with the
// value of property, or fallback when the relationship has none.
func (g *CSRGraph) ForEachWeightedRelationship(node int64, property string, fallback float64, fn WeightedRelationshipConsumer) {
	weights := g.relProps[property]
	for i := g.offsets[node]; i < g.offsets[node+1]; i++ {
		w := fallback
		if weights != nil && !math.IsNaN(weights[i]) {
			w = weights[i]
		}
		if !fn(node, g.targets[i], w) {
			return
		}
	}
}

// HasRelationshipProperty reports whether any relationship carries property
func (g *CSRGraph) HasRelationshipProperty(property string) bool {
	_, ok := g.relProps[property]
	return ok
}

// NodeProperties returns the property column for key
func (g *CSRGraph) NodeProperties(key string) (NodeProperties, bool) {
	col, ok := g.nodeProps[key]
	if !ok {
		return nil, false
	}
	return col, true
}

// NodePropertyKeys returns the loaded node property keys in sorted order
func (g *CSRGraph) NodePropertyKeys() []string {
	return sortedKeys(g.nodeProps)
}

// IDMap returns the id mapping of the graph
func (g *CSRGraph) IDMap() *IDMap {
	return g.idMap
}

// Orientation returns the projection the graph was built with
func (g *CSRGraph) Orientation() Orientation {
	return g.orientation
}

// propertyColumn holds one node property for every node
type propertyColumn struct {
	valueType ValueType
	values    []Value
}

func (c *propertyColumn) Type() ValueType {
	return c.valueType
}

func (c *propertyColumn) Value(node int64) Value {
	return c.values[node]
}

func (c *propertyColumn) Long(node int64) int64 {
	v, _ := c.values[node].AsLong()
	return v
}

func (c *propertyColumn) Double(node int64) float64 {
	v, _ := c.values[node].AsDouble()
	return v
}
