package job

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dd0wney/cluso-pregel/pkg/algorithms"
	"github.com/dd0wney/cluso-pregel/pkg/export"
	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/graphio"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// Outcome is the result of Execute. Exactly one algorithm result is set.
type Outcome struct {
	Algorithm    Algorithm
	Run          *pregel.Result
	PageRank     *algorithms.PageRankResult
	Community    *algorithms.CommunityDetectionResult
	ShortestPath *algorithms.ShortestPathResult
}

// LoadGraph reads the job's edge list
func LoadGraph(j *Job) (*graph.CSRGraph, graphio.Stats, error) {
	g, stats, err := graphio.ReadFile(j.Graph.Path, j.Graph.Options)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load graph: %w", err)
	}
	return g, stats, nil
}

// EngineConfig returns the engine configuration of the selected
// algorithm for reading or overriding
func (j *Job) EngineConfig() *pregel.Config {
	switch j.Algorithm {
	case PageRank:
		return &j.PageRank.Config
	case ShortestPath:
		return &j.ShortestPath.Config
	default:
		return &j.Community.Config
	}
}

// Execute runs the selected algorithm on g
func Execute(ctx context.Context, j *Job, g graph.Graph, opts ...pregel.Option) (*Outcome, error) {
	out := &Outcome{Algorithm: j.Algorithm}
	var err error

	switch j.Algorithm {
	case PageRank:
		out.PageRank, err = algorithms.PageRank(ctx, g, j.PageRank, opts...)
		if err == nil {
			out.Run = out.PageRank.Run
		}
	case ConnectedComponents:
		out.Community, err = algorithms.ConnectedComponents(ctx, g, j.Community, opts...)
		if err == nil {
			out.Run = out.Community.Run
		}
	case LabelPropagation:
		out.Community, err = algorithms.LabelPropagation(ctx, g, j.Community, opts...)
		if err == nil {
			out.Run = out.Community.Run
		}
	case ShortestPath:
		out.ShortestPath, err = algorithms.SingleSourceShortestPath(ctx, g, j.ShortestPath, opts...)
		if err == nil {
			out.Run = out.ShortestPath.Run
		}
	default:
		return nil, fmt.Errorf("unknown algorithm %q", j.Algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.Algorithm, err)
	}
	return out, nil
}

// OpenSink creates the sink for an output target. The returned close
// function releases connections and is never nil.
func OpenSink(ctx context.Context, out Output) (export.Sink, func(), error) {
	noop := func() {}
	switch {
	case out.Target == "-":
		return export.NewJSONLSink(os.Stdout), noop, nil
	case strings.HasPrefix(out.Target, "s3://"):
		bucket, key, err := export.ParseS3URL(out.Target)
		if err != nil {
			return nil, noop, err
		}
		client, err := export.NewS3Client(ctx, out.S3)
		if err != nil {
			return nil, noop, err
		}
		return export.NewS3Sink(client, bucket, key), noop, nil
	case IsPostgresURL(out.Target):
		pool, err := export.NewPostgresPool(ctx, out.Target)
		if err != nil {
			return nil, noop, err
		}
		var opts []export.PostgresOption
		if out.CreateTable {
			opts = append(opts, export.WithCreateTable())
		}
		return export.NewPostgresSink(pool, out.Table, opts...), pool.Close, nil
	default:
		return export.NewFileSink(out.Target), noop, nil
	}
}

// Export writes the public node values of a run to the job's target
func Export(ctx context.Context, out Output, res *pregel.Result, g graph.Graph) (int64, error) {
	sink, closeSink, err := OpenSink(ctx, out)
	if err != nil {
		return 0, fmt.Errorf("failed to open output: %w", err)
	}
	defer closeSink()

	n, err := sink.Write(ctx, export.FromResult(res, g))
	if err != nil {
		return n, fmt.Errorf("failed to export results: %w", err)
	}
	return n, nil
}

// Describe returns a textual target for logs and summaries. Credentials
// in PostgreSQL URLs are dropped.
func Describe(out Output) string {
	switch {
	case out.Target == "":
		return "none"
	case out.Target == "-":
		return "stdout"
	case IsPostgresURL(out.Target):
		target := out.Target
		if at := strings.LastIndex(target, "@"); at >= 0 {
			scheme := target[:strings.Index(target, "://")+3]
			target = scheme + target[at+1:]
		}
		return fmt.Sprintf("%s table %s", target, out.Table)
	default:
		return out.Target
	}
}
