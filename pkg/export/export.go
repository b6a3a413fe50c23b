// Package export writes the public node values of a pregel run to a sink.
// A sink receives one row per node, keyed by the original node id, with
// one column per public schema element in declaration order.
package export

import (
	"context"
	"iter"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// NodeIDColumn is the name of the id column written by every sink
const NodeIDColumn = "node_id"

// Sink persists a result table and reports the number of rows written
type Sink interface {
	Write(ctx context.Context, table *Table) (int64, error)
}

var (
	_ Sink = (*JSONLSink)(nil)
	_ Sink = (*FileSink)(nil)
	_ Sink = (*S3Sink)(nil)
	_ Sink = (*PostgresSink)(nil)
)

// Row is one exported node
type Row struct {
	NodeID uint64
	Values []graph.Value
}

// Table is a read-only view over the public values of a run
type Table struct {
	columns []pregel.Element
	values  *pregel.NodeValue
	idMap   *graph.IDMap
}

// NewTable selects the public elements of values. Without an id map the
// mapped id is exported as the node id.
func NewTable(values *pregel.NodeValue, idMap *graph.IDMap) *Table {
	t := &Table{values: values, idMap: idMap}
	for _, e := range values.Schema().Elements() {
		if e.Visibility == pregel.Public {
			t.columns = append(t.columns, e)
		}
	}
	return t
}

// FromResult is a shortcut for NewTable over a run result
func FromResult(res *pregel.Result, g graph.Graph) *Table {
	return NewTable(res.NodeValues, g.IDMap())
}

// Columns returns the exported elements without the id column
func (t *Table) Columns() []pregel.Element {
	return t.columns
}

// ColumnNames returns the element keys without the id column
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Key
	}
	return names
}

// Len returns the number of rows
func (t *Table) Len() int64 {
	return t.values.NodeCount()
}

// Row returns the row of a mapped node
func (t *Table) Row(node int64) Row {
	row := Row{NodeID: uint64(node), Values: make([]graph.Value, len(t.columns))}
	if t.idMap != nil {
		row.NodeID = t.idMap.ToOriginal(node)
	}
	for i, c := range t.columns {
		// keys come from the schema so the lookup cannot fail
		row.Values[i], _ = t.values.Value(c.Key, node)
	}
	return row
}

// Rows iterates all rows in mapped id order
func (t *Table) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		n := t.Len()
		for node := int64(0); node < n; node++ {
			if !yield(t.Row(node)) {
				return
			}
		}
	}
}
