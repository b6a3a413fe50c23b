package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// SnappyExtension marks files and object keys written as a snappy stream
const SnappyExtension = ".snappy"

// ctxCheckInterval is how many rows are written between context checks
const ctxCheckInterval = 4096

// JSONLSink writes one JSON object per line. Non-finite doubles are
// written as null.
type JSONLSink struct {
	w io.Writer
}

// NewJSONLSink creates a sink over w
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

// Write encodes every row of table
func (s *JSONLSink) Write(ctx context.Context, table *Table) (int64, error) {
	keys, err := jsonKeys(table.ColumnNames())
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(s.w)
	var (
		n   int64
		buf []byte
	)
	for row := range table.Rows() {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		buf = appendRow(buf[:0], keys, row)
		if _, err := bw.Write(buf); err != nil {
			return n, fmt.Errorf("write row %d: %w", n, err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	return n, nil
}

func jsonKeys(names []string) ([][]byte, error) {
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("encode column %q: %w", name, err)
		}
		keys[i] = k
	}
	return keys, nil
}

func appendRow(b []byte, keys [][]byte, row Row) []byte {
	b = append(b, `{"`+NodeIDColumn+`":`...)
	b = strconv.AppendUint(b, row.NodeID, 10)
	for i, v := range row.Values {
		b = append(b, ',')
		b = append(b, keys[i]...)
		b = append(b, ':')
		b = appendValue(b, v)
	}
	return append(b, '}', '\n')
}

func appendValue(b []byte, v graph.Value) []byte {
	switch v.Type {
	case graph.TypeLong:
		return strconv.AppendInt(b, v.Long, 10)
	case graph.TypeDouble:
		return appendDouble(b, v.Double)
	case graph.TypeLongArray:
		b = append(b, '[')
		for i, x := range v.LongArray {
			if i > 0 {
				b = append(b, ',')
			}
			b = strconv.AppendInt(b, x, 10)
		}
		return append(b, ']')
	default:
		b = append(b, '[')
		for i, x := range v.DoubleArray {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendDouble(b, x)
		}
		return append(b, ']')
	}
}

func appendDouble(b []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(b, "null"...)
	}
	return strconv.AppendFloat(b, f, 'g', -1, 64)
}

// FileSink writes a JSONL file, snappy framed when Compress is set. The
// file is written next to its destination and renamed into place.
type FileSink struct {
	Path     string
	Compress bool
}

// NewFileSink creates a file sink. Paths ending in .snappy are compressed.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Compress: strings.HasSuffix(path, SnappyExtension)}
}

// Write writes table to the file
func (s *FileSink) Write(ctx context.Context, table *Table) (int64, error) {
	dir, base := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := writeJSONL(ctx, tmp, table, s.Compress)
	if err != nil {
		tmp.Close()
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return n, fmt.Errorf("failed to sync export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return n, fmt.Errorf("failed to move export file into place: %w", err)
	}
	return n, nil
}

func writeJSONL(ctx context.Context, w io.Writer, table *Table, compress bool) (int64, error) {
	if !compress {
		return NewJSONLSink(w).Write(ctx, table)
	}
	sw := snappy.NewBufferedWriter(w)
	n, err := NewJSONLSink(sw).Write(ctx, table)
	if err != nil {
		sw.Close()
		return n, err
	}
	if err := sw.Close(); err != nil {
		return n, fmt.Errorf("failed to finish snappy stream: %w", err)
	}
	return n, nil
}
