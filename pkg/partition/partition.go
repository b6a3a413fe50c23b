// Package partition splits the dense node id space [0, nodeCount) into
// disjoint, contiguous partitions that are processed by one worker each.
package partition

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultBatchSize is the minimum cumulative degree of a degree partition
const DefaultBatchSize = 10_000

var (
	// ErrInvalidConcurrency is returned when concurrency is below 1
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	// ErrUnknownStrategy is returned for an unrecognised partitioning strategy
	ErrUnknownStrategy = errors.New("unknown partitioning strategy")
)

// Strategy selects how node ids are split across partitions
type Strategy int

const (
	// Range splits the id space into near-equal contiguous ranges
	Range Strategy = iota
	// Degree closes a partition once its cumulative degree reaches a batch size
	Degree
)

// String returns the configuration name of the strategy
func (s Strategy) String() string {
	switch s {
	case Range:
		return "RANGE"
	case Degree:
		return "DEGREE"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "RANGE", "range":
		return Range, nil
	case "DEGREE", "degree":
		return Degree, nil
	default:
		return Range, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Strategy) MarshalText() ([]byte, error) {
	switch s {
	case Range, Degree:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Partition is a contiguous node id range [Start, Start+Length)
type Partition struct {
	ID     int
	Start  int64
	Length int64
	// TotalDegree is the sum of degrees of the partition's nodes. Only
	// populated by degree partitioning.
	TotalDegree int64
}

// End returns the exclusive upper bound of the partition
func (p Partition) End() int64 {
	return p.Start + p.Length
}

// Contains reports whether node belongs to the partition
func (p Partition) Contains(node int64) bool {
	return node >= p.Start && node < p.End()
}

// String implements fmt.Stringer
func (p Partition) String() string {
	return fmt.Sprintf("Partition{id=%d, start=%d, length=%d}", p.ID, p.Start, p.Length)
}

// DegreeSource is the part of the topology partitioning needs
type DegreeSource interface {
	NodeCount() int64
	RelationshipCount() int64
	Degree(node int64) int
}

// Plan computes the partitions for one run
func Plan(strategy Strategy, concurrency int, source DegreeSource) ([]Partition, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}

	switch strategy {
	case Range:
		return RangePartition(source.NodeCount(), concurrency), nil
	case Degree:
		batchSize := ceilDiv(source.RelationshipCount(), int64(concurrency))
		if batchSize < DefaultBatchSize {
			batchSize = DefaultBatchSize
		}
		return DegreePartition(source, batchSize), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

// RangePartition splits [0, nodeCount) into at most concurrency ranges whose
// lengths differ by at most one. No empty partition is produced.
func RangePartition(nodeCount int64, concurrency int) []Partition {
	if nodeCount <= 0 {
		return nil
	}
	count := int64(concurrency)
	if count > nodeCount {
		count = nodeCount
	}

	base, rem := nodeCount/count, nodeCount%count
	partitions := make([]Partition, 0, count)
	start := int64(0)
	for i := int64(0); i < count; i++ {
		length := base
		if i < rem {
			length++
		}
		partitions = append(partitions, Partition{ID: int(i), Start: start, Length: length})
		start += length
	}
	return partitions
}

// DegreePartition walks node ids in order and closes a partition as soon as
// its cumulative degree reaches batchSize. The last partition takes the rest.
func DegreePartition(source DegreeSource, batchSize int64) []Partition {
	nodeCount := source.NodeCount()
	if nodeCount <= 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = 1
	}

	var (
		partitions []Partition
		start      int64
		degree     int64
	)
	for node := int64(0); node < nodeCount; node++ {
		degree += int64(source.Degree(node))
		if degree >= batchSize || node == nodeCount-1 {
			partitions = append(partitions, Partition{
				ID:          len(partitions),
				Start:       start,
				Length:      node + 1 - start,
				TotalDegree: degree,
			})
			start = node + 1
			degree = 0
		}
	}
	return partitions
}

// Lookup returns the index of the partition containing node, or -1
func Lookup(partitions []Partition, node int64) int {
	i := sort.Search(len(partitions), func(i int) bool {
		return partitions[i].End() > node
	})
	if i < len(partitions) && partitions[i].Contains(node) {
		return i
	}
	return -1
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
