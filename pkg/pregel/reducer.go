package pregel

import (
	"golang.org/x/exp/constraints"
)

// Reducer folds messages addressed to the same node within one superstep.
// Reduce must be associative and commutative: arrival order across
// workers is unspecified.
type Reducer[M any] interface {
	Identity() M
	Reduce(current, message M) M
}

// Number is the set of message types the built-in reducers support
type Number interface {
	constraints.Integer | constraints.Float
}

// SumReducer adds messages
type SumReducer[M Number] struct{}

func (SumReducer[M]) Identity() M {
	return 0
}

func (SumReducer[M]) Reduce(current, message M) M {
	return current + message
}

// MinReducer keeps the smallest message
type MinReducer[M Number] struct {
	// Max is the identity, the largest representable value of M
	Max M
}

func (r MinReducer[M]) Identity() M {
	return r.Max
}

func (MinReducer[M]) Reduce(current, message M) M {
	return min(current, message)
}

// MaxReducer keeps the largest message
type MaxReducer[M Number] struct {
	// Min is the identity, the smallest representable value of M
	Min M
}

func (r MaxReducer[M]) Identity() M {
	return r.Min
}

func (MaxReducer[M]) Reduce(current, message M) M {
	return max(current, message)
}

// CountReducer counts messages, ignoring their values
type CountReducer[M Number] struct{}

func (CountReducer[M]) Identity() M {
	return 0
}

func (CountReducer[M]) Reduce(current, _ M) M {
	return current + 1
}

// ReducerFunc adapts an identity and a function to a Reducer
type ReducerFunc[M any] struct {
	Zero M
	Fn   func(current, message M) M
}

func (r ReducerFunc[M]) Identity() M {
	return r.Zero
}

func (r ReducerFunc[M]) Reduce(current, message M) M {
	return r.Fn(current, message)
}
