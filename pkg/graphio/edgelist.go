// Package graphio loads graphs from edge list files.
//
// Each non-empty line holds "source target [weight]" separated by
// whitespace or commas. A line with a single id declares an isolated node.
// Lines starting with '#' or '%' are comments.
package graphio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// DefaultWeightProperty names the relationship property holding the
// optional third column.
const DefaultWeightProperty = "weight"

// maxLineBytes bounds a single edge list line
const maxLineBytes = 1 << 20

// Options controls edge list loading
type Options struct {
	Orientation    graph.Orientation `yaml:"orientation"`
	WeightProperty string            `yaml:"weightProperty" validate:"omitempty,property_key"`
	ExpectedNodes  int               `yaml:"expectedNodes" validate:"min=0"`
}

// DefaultOptions returns options for a natural graph with a "weight" column
func DefaultOptions() Options {
	return Options{Orientation: graph.Natural, WeightProperty: DefaultWeightProperty}
}

// ErrNonFiniteWeight is the cause of a ParseError for a NaN or infinite weight
var ErrNonFiniteWeight = errors.New("weight must be finite")

// ParseError reports a malformed line
type ParseError struct {
	Path  string
	Line  int
	Text  string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %q: %v", e.Path, e.Line, e.Text, e.Cause)
	}
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Stats summarises a load
type Stats struct {
	Lines         int
	Relationships int
	Weighted      int
	Nodes         int64
}

// ReadFile memory-maps path and parses it as an edge list
func ReadFile(path string, opts Options) (*graph.CSRGraph, Stats, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open edge list: %w", err)
	}
	defer reader.Close()

	g, stats, err := Read(io.NewSectionReader(reader, 0, int64(reader.Len())), opts)
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Path = path
	}
	return g, stats, err
}

// Read parses an edge list from r
func Read(r io.Reader, opts Options) (*graph.CSRGraph, Stats, error) {
	builderOpts := []graph.BuilderOption{graph.WithOrientation(opts.Orientation)}
	if opts.ExpectedNodes > 0 {
		builderOpts = append(builderOpts, graph.WithExpectedNodes(opts.ExpectedNodes))
	}
	b := graph.NewBuilder(builderOpts...)
	weightKey := opts.WeightProperty
	if weightKey == "" {
		weightKey = DefaultWeightProperty
	}

	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		fail := func(cause error) error {
			return &ParseError{Line: stats.Lines, Text: line, Cause: cause}
		}

		switch len(fields) {
		case 1:
			id, err := strconv.ParseUint(fields[0], 10, 64)
			if err != nil {
				return nil, stats, fail(err)
			}
			if err := b.AddNode(id, nil); err != nil {
				return nil, stats, fail(err)
			}
		case 2, 3:
			source, err := strconv.ParseUint(fields[0], 10, 64)
			if err != nil {
				return nil, stats, fail(err)
			}
			target, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, stats, fail(err)
			}
			var props map[string]float64
			if len(fields) == 3 {
				weight, err := strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return nil, stats, fail(err)
				}
				if math.IsNaN(weight) || math.IsInf(weight, 0) {
					return nil, stats, fail(ErrNonFiniteWeight)
				}
				props = map[string]float64{weightKey: weight}
				stats.Weighted++
			}
			b.AddRelationship(source, target, props)
			stats.Relationships++
		default:
			return nil, stats, fail(fmt.Errorf("expected 1 to 3 fields, got %d", len(fields)))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read edge list: %w", err)
	}

	g, err := b.Build()
	if err != nil {
		return nil, stats, err
	}
	stats.Nodes = g.NodeCount()
	return g, stats, nil
}
