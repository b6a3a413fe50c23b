package pregel

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-pregel/pkg/partition"
)

// Sentinel errors
var (
	ErrInvalidConfiguration = errors.New("invalid pregel configuration")
	ErrOverflowRisk         = errors.New("estimated work exceeds safety bound")
	ErrComputation          = errors.New("computation failed")
)

// ConfigurationError is returned before a run starts when the configuration,
// schema or graph cannot support the requested computation.
type ConfigurationError struct {
	Field string
	Value any
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("pregel configuration: %v", e.Cause)
	}
	return fmt.Sprintf("pregel configuration %s=%v: %v", e.Field, e.Value, e.Cause)
}

// Unwrap returns the underlying cause
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is matches ErrInvalidConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// ComputationError reports a failure of user code. The run is aborted and
// no partial result is returned.
type ComputationError struct {
	Superstep      int
	NodeID         int64
	OriginalNodeID uint64
	Partition      partition.Partition
	Strategy       partition.Strategy
	Cause          error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("compute failed at superstep %d, node %d (original %d) in %s under %s partitioning: %v",
		e.Superstep, e.NodeID, e.OriginalNodeID, e.Partition, e.Strategy, e.Cause)
}

// Unwrap returns the underlying cause
func (e *ComputationError) Unwrap() error {
	return e.Cause
}

// Is matches ErrComputation
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// OverflowRiskError is returned when the estimated footprint of a run
// exceeds the configured bound or cannot be represented.
type OverflowRiskError struct {
	Estimated int64
	Limit     int64
	Reason    string
}

func (e *OverflowRiskError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("%v: %s (estimated %d bytes, limit %d bytes)", ErrOverflowRisk, e.Reason, e.Estimated, e.Limit)
	}
	return fmt.Sprintf("%v: %s", ErrOverflowRisk, e.Reason)
}

// Is matches ErrOverflowRisk
func (e *OverflowRiskError) Is(target error) bool {
	return target == ErrOverflowRisk
}

// panicError carries a value recovered from user code
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
