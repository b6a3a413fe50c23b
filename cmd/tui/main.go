package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// runJob loads the graph, runs the algorithm and exports the result,
// reporting every step on events. events is closed when the run ends.
func runJob(ctx context.Context, j *job.Job, logger logging.Logger, events chan<- tea.Msg) {
	defer close(events)

	g, stats, err := job.LoadGraph(j)
	if err != nil {
		events <- doneMsg{err: err}
		return
	}
	events <- graphLoadedMsg{stats: stats}

	listener := pregel.ListenerFuncs{
		Superstep: func(s pregel.SuperstepStats) {
			events <- superstepMsg(s)
		},
	}
	outcome, err := job.Execute(ctx, j, g, pregel.WithLogger(logger), pregel.WithListener(listener))
	if err != nil {
		events <- doneMsg{err: err}
		return
	}

	var exported int64
	if j.Output.Target != "" && outcome.Run.Status != pregel.Cancelled {
		exported, err = job.Export(ctx, j.Output, outcome.Run, g)
	}
	events <- doneMsg{outcome: outcome, exported: exported, err: err}
}

func main() {
	var (
		jobFile     = flag.String("job", "", "Job file (YAML)")
		graphFile   = flag.String("graph", "", "Edge list file")
		algorithm   = flag.String("algorithm", "", "Algorithm: pagerank, wcc, lpa or sssp")
		concurrency = flag.Int("concurrency", 0, "Worker count")
		out         = flag.String("out", "", "Output: file path, s3://bucket/key or postgres:// URL")
		logFile     = flag.String("log-file", "", "Write engine logs to this file")
	)
	flag.Parse()

	j := job.Default()
	if *jobFile != "" {
		loaded, err := job.Load(*jobFile)
		if err != nil {
			log.Fatalf("Failed to load job: %v", err)
		}
		j = *loaded
	}
	if *graphFile != "" {
		j.Graph.Path = *graphFile
	}
	if *algorithm != "" {
		j.Algorithm = job.Algorithm(*algorithm)
		if j.Algorithm == job.ConnectedComponents {
			j.Graph.Orientation = graph.Undirected
		}
	}
	if *concurrency > 0 {
		j.EngineConfig().Concurrency = *concurrency
	}
	if *out != "" {
		j.Output.Target = *out
	}
	if j.Output.Target == "-" {
		log.Fatal("stdout output is not available in the monitor")
	}
	if err := j.Validate(); err != nil {
		log.Fatalf("Invalid job: %v", err)
	}

	// the terminal belongs to the monitor, so logs go to a file or nowhere
	var logOutput io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOutput = f
	}
	logger := logging.NewJSONLogger(logOutput, logging.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan tea.Msg, 64)
	go runJob(ctx, &j, logger, events)

	p := tea.NewProgram(newModel(&j, events, cancel), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
