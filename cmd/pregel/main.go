package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/health"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/metrics"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
	"github.com/dd0wney/cluso-pregel/pkg/server"
)

// overrides are command line values applied on top of the job file.
// Zero values keep the job's setting.
type overrides struct {
	graph         string
	algorithm     string
	orientation   string
	source        uint64
	sourceSet     bool
	concurrency   int
	maxIterations int
	out           string
	table         string
}

func main() {
	var o overrides
	var (
		jobFile     = flag.String("job", "", "Job file (YAML)")
		metricsAddr = flag.String("metrics-addr", "", "Serve /metrics, /healthz and /readyz on this address")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn or error")
		stallAfter  = flag.Duration("stall-after", time.Minute, "Report the run degraded when no superstep completes in this window")
	)
	flag.StringVar(&o.graph, "graph", "", "Edge list file")
	flag.StringVar(&o.algorithm, "algorithm", "", "Algorithm: pagerank, wcc, lpa or sssp")
	flag.StringVar(&o.orientation, "orientation", "", "Graph orientation: natural, reverse or undirected")
	flag.Uint64Var(&o.source, "source", 0, "Source node for sssp")
	flag.IntVar(&o.concurrency, "concurrency", 0, "Worker count")
	flag.IntVar(&o.maxIterations, "max-iterations", 0, "Superstep limit")
	flag.StringVar(&o.out, "out", "", "Output: file path, -, s3://bucket/key or postgres:// URL")
	flag.StringVar(&o.table, "table", "", "Table for postgres output")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "source" {
			o.sourceSet = true
		}
	})

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(*logLevel))
	logging.SetDefaultLogger(logger)

	j, err := loadJob(*jobFile, o)
	if err != nil {
		logger.Error("invalid job", logging.Error(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, j, logger, *metricsAddr, *stallAfter); err != nil {
		logger.Error("job failed", logging.Error(err))
		os.Exit(1)
	}
}

func loadJob(path string, o overrides) (*job.Job, error) {
	j := job.Default()
	if path != "" {
		loaded, err := job.Load(path)
		if err != nil {
			return nil, err
		}
		j = *loaded
	}
	if err := o.apply(&j); err != nil {
		return nil, err
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

func (o overrides) apply(j *job.Job) error {
	if o.graph != "" {
		j.Graph.Path = o.graph
	}
	if o.algorithm != "" {
		j.Algorithm = job.Algorithm(o.algorithm)
		if j.Algorithm == job.ConnectedComponents && o.orientation == "" {
			j.Graph.Orientation = graph.Undirected
		}
	}
	if o.orientation != "" {
		orientation, err := graph.ParseOrientation(o.orientation)
		if err != nil {
			return err
		}
		j.Graph.Orientation = orientation
	}
	if o.sourceSet {
		j.ShortestPath.Source = o.source
	}

	cfg := j.EngineConfig()
	if o.concurrency > 0 {
		cfg.Concurrency = o.concurrency
	}
	if o.maxIterations > 0 {
		cfg.MaxIterations = o.maxIterations
	}

	if o.out != "" {
		j.Output.Target = o.out
	}
	if o.table != "" {
		j.Output.Table = o.table
	}
	return nil
}

func run(ctx context.Context, j *job.Job, logger logging.Logger, metricsAddr string, stallAfter time.Duration) error {
	registry := metrics.DefaultRegistry()
	tracker := health.NewRunTracker(stallAfter)
	graphReady := health.NewReadyFlag("graph")

	checker := health.NewChecker()
	checker.RegisterLivenessCheck("run", tracker.Check)
	checker.RegisterReadinessCheck("graph", graphReady.Check)
	checker.RegisterReadinessCheck("memory", health.MemoryCheck(j.EngineConfig().MaxMemoryBytes, nil))

	if metricsAddr != "" {
		srv := server.NewGracefulServer(metricsAddr, server.NewMonitorHandler(registry.GetPrometheusRegistry(), checker), logger)
		if err := srv.Listen(); err != nil {
			return err
		}
		srvCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Serve(srvCtx); err != nil {
				logger.Error("monitor server failed", logging.Error(err))
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	timer := logging.StartTimer(logger, "graph loaded", logging.Path(j.Graph.Path))
	g, stats, err := job.LoadGraph(j)
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End(logging.Int64("nodes", stats.Nodes), logging.Int("relationships", stats.Relationships))
	graphReady.Set()

	tracker.Begin(string(j.Algorithm))
	outcome, err := job.Execute(ctx, j, g,
		pregel.WithLogger(logger),
		pregel.WithListener(registry),
		pregel.WithListener(tracker),
	)
	registry.UpdateSystemMetrics()
	if err != nil {
		return err
	}

	var exported int64
	if j.Output.Target != "" && outcome.Run.Status != pregel.Cancelled {
		exportTimer := logging.StartTimer(logger, "results exported", logging.String("target", job.Describe(j.Output)))
		exported, err = job.Export(ctx, j.Output, outcome.Run, g)
		if err != nil {
			exportTimer.EndError(err)
			return err
		}
		exportTimer.End(logging.Int64("rows", exported))
	}

	var w io.Writer = os.Stdout
	if j.Output.Target == "-" {
		w = os.Stderr
	}
	fmt.Fprintln(w, renderSummary(j, stats, outcome, exported))

	if outcome.Run.Status == pregel.Cancelled {
		return errors.New("run cancelled")
	}
	return nil
}
