package partition

import "github.com/dd0wney/cluso-pregel/pkg/graph"

// RelationshipSource adds adjacency iteration to DegreeSource
type RelationshipSource interface {
	DegreeSource
	ForEachRelationship(node int64, fn graph.RelationshipConsumer)
}

// Metrics describes the quality of a partitioning
type Metrics struct {
	PartitionSizes []int64 // Nodes per partition
	Degrees        []int64 // Relationships per partition
	EdgeCuts       []int64 // Relationships leaving each partition
	LoadBalance    float64 // min/max relationships per partition; 1 is perfect
	CutRatio       float64 // Fraction of relationships crossing partitions
}

// ComputeMetrics analyzes how relationships are distributed over partitions
func ComputeMetrics(partitions []Partition, source RelationshipSource) *Metrics {
	m := &Metrics{
		PartitionSizes: make([]int64, len(partitions)),
		Degrees:        make([]int64, len(partitions)),
		EdgeCuts:       make([]int64, len(partitions)),
	}

	var total, cuts int64
	for i, p := range partitions {
		m.PartitionSizes[i] = p.Length
		for node := p.Start; node < p.End(); node++ {
			source.ForEachRelationship(node, func(_, target int64) bool {
				m.Degrees[i]++
				if !p.Contains(target) {
					m.EdgeCuts[i]++
				}
				return true
			})
		}
		total += m.Degrees[i]
		cuts += m.EdgeCuts[i]
	}

	m.LoadBalance = 1.0
	if len(partitions) > 0 && total > 0 {
		lo, hi := m.Degrees[0], m.Degrees[0]
		for _, d := range m.Degrees[1:] {
			lo = min(lo, d)
			hi = max(hi, d)
		}
		m.LoadBalance = float64(lo) / float64(hi)
		m.CutRatio = float64(cuts) / float64(total)
	}
	return m
}
