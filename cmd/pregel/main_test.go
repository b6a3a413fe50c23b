package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

func pregelQuiet() pregel.Option {
	return pregel.WithLogger(logging.NewNopLogger())
}

func TestOverridesApply(t *testing.T) {
	j := job.Default()
	o := overrides{
		graph:         "edges.txt",
		algorithm:     "wcc",
		concurrency:   3,
		maxIterations: 9,
		out:           "out.jsonl",
	}
	require.NoError(t, o.apply(&j))

	assert.Equal(t, "edges.txt", j.Graph.Path)
	assert.Equal(t, job.ConnectedComponents, j.Algorithm)
	assert.Equal(t, graph.Undirected, j.Graph.Orientation, "wcc defaults to undirected")
	assert.Equal(t, 3, j.Community.Concurrency)
	assert.Equal(t, 9, j.Community.MaxIterations)
	assert.Equal(t, "out.jsonl", j.Output.Target)
	assert.NoError(t, j.Validate())
}

func TestOverridesApply_SourceAndOrientation(t *testing.T) {
	j := job.Default()
	o := overrides{algorithm: "sssp", source: 0, sourceSet: true, orientation: "reverse"}
	j.ShortestPath.Source = 42
	require.NoError(t, o.apply(&j))
	assert.Equal(t, uint64(0), j.ShortestPath.Source)
	assert.Equal(t, graph.Reverse, j.Graph.Orientation)

	assert.Error(t, overrides{orientation: "sideways"}.apply(&j))
}

func TestLoadJob_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algorithm: lpa\ngraph:\n  path: a.txt\n"), 0o644))

	j, err := loadJob(path, overrides{graph: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, job.LabelPropagation, j.Algorithm)
	assert.Equal(t, "b.txt", j.Graph.Path)

	_, err = loadJob("", overrides{})
	assert.Error(t, err, "graph path is required")
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.txt")
	require.NoError(t, os.WriteFile(edges, []byte("1 2\n2 3\n3 1\n"), 0o644))
	out := filepath.Join(dir, "ranks.jsonl.snappy")

	j, err := loadJob("", overrides{graph: edges, algorithm: "pagerank", out: out, concurrency: 2})
	require.NoError(t, err)
	require.NoError(t, run(context.Background(), j, logging.NewNopLogger(), "127.0.0.1:0", 0))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderSummary(t *testing.T) {
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.txt")
	require.NoError(t, os.WriteFile(edges, []byte("1 2\n2 3\n4 5\n"), 0o644))

	j, err := loadJob("", overrides{graph: edges, algorithm: "wcc"})
	require.NoError(t, err)
	g, stats, err := job.LoadGraph(j)
	require.NoError(t, err)
	outcome, err := job.Execute(context.Background(), j, g, pregelQuiet())
	require.NoError(t, err)

	summary := renderSummary(j, stats, outcome, 0)
	for _, want := range []string{"Pregel run summary", "wcc", "converged", "communities", "3, 2"} {
		assert.True(t, strings.Contains(summary, want), "summary missing %q:\n%s", want, summary)
	}
}
