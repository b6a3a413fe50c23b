package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-pregel/pkg/algorithms"
	"github.com/dd0wney/cluso-pregel/pkg/graph"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/partition"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// BenchmarkStats is one PageRank run at a fixed worker count
type BenchmarkStats struct {
	Workers      int
	Partitioning partition.Strategy
	Supersteps   int
	Duration     time.Duration
	Throughput   float64 // relationship traversals per second
}

func main() {
	numNodes := flag.Int("nodes", 100000, "Number of nodes")
	avgDegree := flag.Int("degree", 10, "Average out degree per node")
	iterations := flag.Int("iterations", 20, "Supersteps per run")
	numWorkers := flag.Int("workers", 0, "Largest worker count (0 = CPU count)")
	seed := flag.Int64("seed", 1, "Random graph seed")
	flag.Parse()

	if *numWorkers == 0 {
		*numWorkers = runtime.NumCPU()
	}

	fmt.Printf("Pregel Parallel PageRank Benchmark\n")
	fmt.Printf("==================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Nodes:       %d\n", *numNodes)
	fmt.Printf("  Avg Degree:  %d\n", *avgDegree)
	fmt.Printf("  Supersteps:  %d\n", *iterations)
	fmt.Printf("  CPU Cores:   %d\n", runtime.NumCPU())
	fmt.Printf("  Workers:     up to %d\n\n", *numWorkers)

	fmt.Printf("Creating test graph...\n")
	g := createTestGraph(*numNodes, *avgDegree, *seed)
	fmt.Printf("   Created %d nodes with %d relationships\n\n", g.NodeCount(), g.RelationshipCount())

	baseline := benchmarkPageRank(g, 1, partition.Range, *iterations)
	printStats("Sequential", baseline, baseline)

	best := baseline
	for _, strategy := range []partition.Strategy{partition.Range, partition.Degree} {
		for workers := 2; workers <= *numWorkers; workers *= 2 {
			stats := benchmarkPageRank(g, workers, strategy, *iterations)
			printStats(fmt.Sprintf("Parallel (%d, %s)", workers, strategy), stats, baseline)
			if stats.Duration < best.Duration {
				best = stats
			}
		}
	}

	bestSpeedup := baseline.Duration.Seconds() / best.Duration.Seconds()
	fmt.Printf("Best Speedup: %.2fx with %d workers and %s partitioning\n", bestSpeedup, best.Workers, best.Partitioning)
}

func printStats(label string, stats, baseline BenchmarkStats) {
	fmt.Printf("%s\n", label)
	fmt.Printf("   Supersteps:  %d\n", stats.Supersteps)
	fmt.Printf("   Duration:    %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("   Throughput:  %.0f relationships/sec\n", stats.Throughput)
	fmt.Printf("   Speedup:     %.2fx\n\n", baseline.Duration.Seconds()/stats.Duration.Seconds())
}

// createTestGraph builds a random graph where a few hubs attract a
// large share of the relationships, so degree partitioning matters.
func createTestGraph(numNodes, avgDegree int, seed int64) *graph.CSRGraph {
	rng := rand.New(rand.NewSource(seed))
	b := graph.NewBuilder(graph.WithExpectedNodes(numNodes))
	for i := 1; i <= numNodes; i++ {
		if err := b.AddNode(uint64(i), nil); err != nil {
			log.Fatalf("Failed to add node: %v", err)
		}
	}

	hubs := max(1, numNodes/100)
	numEdges := numNodes * avgDegree
	for i := 0; i < numEdges; i++ {
		fromID := uint64(rng.Intn(numNodes) + 1)
		toID := uint64(rng.Intn(numNodes) + 1)
		if i%4 == 0 {
			fromID = uint64(rng.Intn(hubs) + 1)
		}
		if fromID != toID {
			b.AddRelationship(fromID, toID, nil)
		}
	}

	g, err := b.Build()
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	return g
}

func benchmarkPageRank(g graph.Graph, workers int, strategy partition.Strategy, iterations int) BenchmarkStats {
	opts := algorithms.DefaultPageRankOptions()
	opts.Concurrency = workers
	opts.Partitioning = strategy
	opts.MaxIterations = iterations
	opts.Tolerance = 0

	start := time.Now()
	res, err := algorithms.PageRank(context.Background(), g, opts, pregel.WithLogger(logging.NewNopLogger()))
	if err != nil {
		log.Fatalf("PageRank failed: %v", err)
	}
	duration := time.Since(start)

	traversals := float64(g.RelationshipCount()) * float64(res.Iterations)
	return BenchmarkStats{
		Workers:      workers,
		Partitioning: strategy,
		Supersteps:   res.Iterations,
		Duration:     duration,
		Throughput:   traversals / duration.Seconds(),
	}
}
