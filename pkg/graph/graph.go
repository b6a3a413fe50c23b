// Package graph provides the read-only topology consumed by the pregel engine:
// a dense [0, nodeCount) id space, adjacency iteration, degrees, node
// properties and relationship properties. Graphs are immutable once built
// and safe for concurrent readers.
package graph

// RelationshipConsumer is called for each relationship of a node.
// Returning false stops the iteration.
type RelationshipConsumer func(source, target int64) bool

// WeightedRelationshipConsumer is called for each relationship of a node
// together with the value of the selected relationship property.
type WeightedRelationshipConsumer func(source, target int64, weight float64) bool

// NodeProperties gives per-node access to one property column
type NodeProperties interface {
	Type() ValueType
	Value(node int64) Value
	Long(node int64) int64
	Double(node int64) float64
}

// Graph is the topology collaborator
type Graph interface {
	NodeCount() int64
	RelationshipCount() int64
	Degree(node int64) int
	ForEachRelationship(node int64, fn RelationshipConsumer)
	// ForEachWeightedRelationship iterates relationships with the named
	// property; relationships without a value report fallback.
	ForEachWeightedRelationship(node int64, property string, fallback float64, fn WeightedRelationshipConsumer)
	HasRelationshipProperty(property string) bool
	NodeProperties(key string) (NodeProperties, bool)
	NodePropertyKeys() []string
	IDMap() *IDMap
	Orientation() Orientation
}
