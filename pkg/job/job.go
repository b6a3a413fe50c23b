// Package job describes a pregel job in YAML and runs it end to end:
// load an edge list, run one algorithm, export the public node values.
package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-pregel/pkg/algorithms"
	"github.com/dd0wney/cluso-pregel/pkg/export"
	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/graphio"
	"github.com/dd0wney/cluso-pregel/pkg/validation"
)

// Algorithm names a built-in algorithm
type Algorithm string

const (
	PageRank            Algorithm = "pagerank"
	ConnectedComponents Algorithm = "wcc"
	LabelPropagation    Algorithm = "lpa"
	ShortestPath        Algorithm = "sssp"
)

// Algorithms lists the accepted algorithm names
var Algorithms = []Algorithm{PageRank, ConnectedComponents, LabelPropagation, ShortestPath}

// Job is one algorithm run over one input graph. Only the options block
// of the selected algorithm is used.
type Job struct {
	Algorithm    Algorithm                      `yaml:"algorithm" validate:"required,oneof=pagerank wcc lpa sssp"`
	Graph        GraphSource                    `yaml:"graph"`
	Output       Output                         `yaml:"output"`
	PageRank     algorithms.PageRankOptions     `yaml:"pagerank"`
	Community    algorithms.CommunityOptions    `yaml:"community"`
	ShortestPath algorithms.ShortestPathOptions `yaml:"shortestPath"`
}

// GraphSource locates the edge list
type GraphSource struct {
	graphio.Options `yaml:",inline"`

	Path string `yaml:"path" validate:"required"`
}

// Output selects where results go. Target is a file path, "-" for
// stdout, s3://bucket/key or a postgres:// connection URL. Empty skips
// the export.
type Output struct {
	Target      string          `yaml:"target"`
	Table       string          `yaml:"table"`
	CreateTable bool            `yaml:"createTable"`
	S3          export.S3Config `yaml:"s3"`
}

// Default returns a PageRank job with default options for every algorithm
func Default() Job {
	return Job{
		Algorithm:    PageRank,
		Graph:        GraphSource{Options: graphio.DefaultOptions()},
		PageRank:     algorithms.DefaultPageRankOptions(),
		Community:    algorithms.DefaultCommunityOptions(),
		ShortestPath: algorithms.DefaultShortestPathOptions(0),
	}
}

// Load reads a job file over the defaults. Unknown keys are rejected.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	j, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return j, nil
}

// Parse decodes a YAML job over the defaults
func Parse(data []byte) (*Job, error) {
	j := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&j); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return &j, nil
}

// Validate checks the job before any input is read
func (j *Job) Validate() error {
	return validation.NewConfigValidator("Job").
		Struct(j).
		Custom("Graph.Orientation", func() error {
			if j.Algorithm == ConnectedComponents && j.Graph.Orientation != graph.Undirected {
				return fmt.Errorf("%s requires an undirected graph, got %s", j.Algorithm, j.Graph.Orientation)
			}
			return nil
		}).
		Custom("Output.Table", func() error {
			if IsPostgresURL(j.Output.Target) && j.Output.Table == "" {
				return errors.New("a table is required for a postgres target")
			}
			return nil
		}).
		Validate()
}

// IsPostgresURL reports whether target is a PostgreSQL connection URL
func IsPostgresURL(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}
