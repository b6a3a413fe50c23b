package pregel

import (
	"fmt"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// column is the storage of one schema element
type column struct {
	element      Element
	longs        []int64
	doubles      []float64
	longArrays   [][]int64
	doubleArrays [][]float64
}

// NodeValue is the per-node state of a run. It performs no locking: during
// a superstep every node is written by the one compute step owning its
// partition, and the superstep barrier publishes writes to the next one.
type NodeValue struct {
	schema    *Schema
	nodeCount int64
	columns   map[string]*column
}

// NewNodeValue allocates storage for every schema element with default
// values: 0, 0.0 or nil arrays.
func NewNodeValue(schema *Schema, nodeCount int64) *NodeValue {
	nv := &NodeValue{
		schema:    schema,
		nodeCount: nodeCount,
		columns:   make(map[string]*column, len(schema.Elements())),
	}
	for _, e := range schema.Elements() {
		c := &column{element: e}
		switch e.Type {
		case graph.TypeLong:
			c.longs = make([]int64, nodeCount)
		case graph.TypeDouble:
			c.doubles = make([]float64, nodeCount)
		case graph.TypeLongArray:
			c.longArrays = make([][]int64, nodeCount)
		case graph.TypeDoubleArray:
			c.doubleArrays = make([][]float64, nodeCount)
		}
		nv.columns[e.Key] = c
	}
	return nv
}

// Schema returns the schema the store was built from
func (nv *NodeValue) Schema() *Schema {
	return nv.schema
}

// NodeCount returns the number of nodes
func (nv *NodeValue) NodeCount() int64 {
	return nv.nodeCount
}

// column panics on unknown keys or type mismatches; both are programming
// errors in the computation and surface as a ComputationError.
func (nv *NodeValue) column(key string, want graph.ValueType) *column {
	c, ok := nv.columns[key]
	if !ok {
		panic(fmt.Sprintf("pregel: node value %q is not part of the schema", key))
	}
	if c.element.Type != want {
		panic(fmt.Sprintf("pregel: node value %q is %s, not %s", key, c.element.Type, want))
	}
	return c
}

func (nv *NodeValue) Double(key string, node int64) float64 {
	return nv.column(key, graph.TypeDouble).doubles[node]
}

func (nv *NodeValue) SetDouble(key string, node int64, v float64) {
	nv.column(key, graph.TypeDouble).doubles[node] = v
}

func (nv *NodeValue) Long(key string, node int64) int64 {
	return nv.column(key, graph.TypeLong).longs[node]
}

func (nv *NodeValue) SetLong(key string, node int64, v int64) {
	nv.column(key, graph.TypeLong).longs[node] = v
}

func (nv *NodeValue) LongArray(key string, node int64) []int64 {
	return nv.column(key, graph.TypeLongArray).longArrays[node]
}

func (nv *NodeValue) SetLongArray(key string, node int64, v []int64) {
	nv.column(key, graph.TypeLongArray).longArrays[node] = v
}

func (nv *NodeValue) DoubleArray(key string, node int64) []float64 {
	return nv.column(key, graph.TypeDoubleArray).doubleArrays[node]
}

func (nv *NodeValue) SetDoubleArray(key string, node int64, v []float64) {
	nv.column(key, graph.TypeDoubleArray).doubleArrays[node] = v
}

// Value returns the slot for key and node as a typed graph.Value
func (nv *NodeValue) Value(key string, node int64) (graph.Value, error) {
	c, ok := nv.columns[key]
	if !ok {
		return graph.Value{}, fmt.Errorf("node value %q is not part of the schema", key)
	}
	switch c.element.Type {
	case graph.TypeLong:
		return graph.LongValue(c.longs[node]), nil
	case graph.TypeDouble:
		return graph.DoubleValue(c.doubles[node]), nil
	case graph.TypeLongArray:
		return graph.LongArrayValue(c.longArrays[node]), nil
	default:
		return graph.DoubleArrayValue(c.doubleArrays[node]), nil
	}
}

// Doubles returns the backing slice of a double column. The slice is owned
// by the store.
func (nv *NodeValue) Doubles(key string) []float64 {
	return nv.column(key, graph.TypeDouble).doubles
}

// Longs returns the backing slice of a long column. The slice is owned by
// the store.
func (nv *NodeValue) Longs(key string) []int64 {
	return nv.column(key, graph.TypeLong).longs
}
