package pregel

import (
	"fmt"
	"math"
	"math/bits"
)

// MemoryEstimate is the expected heap footprint of a run in bytes
type MemoryEstimate struct {
	NodeValues int64
	HaltVotes  int64
	Messages   int64
	Total      int64
}

func (e MemoryEstimate) String() string {
	return fmt.Sprintf("total=%d (values=%d votes=%d messages=%d)", e.Total, e.NodeValues, e.HaltVotes, e.Messages)
}

// Estimate computes the footprint of a run. Plain messaging is sized for
// one message per relationship in each of the two buffers. Combined
// messaging holds one slot per node in each buffer plus two bitsets. ok is
// false if any term does not fit in int64.
func Estimate(nodeCount, relationshipCount int64, schema *Schema, mode Messaging, messageSize int64) (est MemoryEstimate, ok bool) {
	bitsetBytes := (nodeCount + 63) / 64 * 8
	est.HaltVotes = bitsetBytes

	var ok1, ok2 bool
	est.NodeValues, ok1 = mulInt64(nodeCount, schema.BytesPerNode())

	switch mode {
	case MessagingCombined:
		var slots int64
		slots, ok2 = mulInt64(nodeCount, messageSize)
		est.Messages = 2*slots + 2*bitsetBytes
		ok2 = ok2 && slots <= math.MaxInt64/4
	default:
		var queued int64
		queued, ok2 = mulInt64(relationshipCount, messageSize)
		// one slice header per node in each buffer
		headers, ok3 := mulInt64(nodeCount, 24)
		ok2 = ok2 && ok3 && queued <= math.MaxInt64/4 && headers <= math.MaxInt64/4
		est.Messages = 2*queued + 2*headers
	}
	if !ok1 || !ok2 {
		return est, false
	}

	est.Total = est.NodeValues + est.HaltVotes + est.Messages
	if est.Total < 0 {
		return est, false
	}
	return est, true
}

// checkOverflowRisk refuses runs whose estimated work or footprint exceeds
// what can be represented or the configured bound.
func checkOverflowRisk(cfg Config, nodeCount, relationshipCount int64, est MemoryEstimate, estOK bool) error {
	if _, ok := mulInt64(int64(cfg.MaxIterations), relationshipCount); !ok {
		return &OverflowRiskError{
			Reason: fmt.Sprintf("%d iterations over %d relationships overflows the message counter", cfg.MaxIterations, relationshipCount),
			Limit:  cfg.MaxMemoryBytes,
		}
	}
	if !estOK {
		return &OverflowRiskError{
			Reason: fmt.Sprintf("memory estimate for %d nodes and %d relationships overflows", nodeCount, relationshipCount),
			Limit:  cfg.MaxMemoryBytes,
		}
	}
	if cfg.MaxMemoryBytes > 0 && est.Total > cfg.MaxMemoryBytes {
		return &OverflowRiskError{
			Estimated: est.Total,
			Limit:     cfg.MaxMemoryBytes,
			Reason:    "estimated memory exceeds maxMemoryBytes",
		}
	}
	return nil
}

// mulInt64 multiplies two non-negative values, reporting overflow
func mulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}
