package pregel

import (
	"iter"
)

// Messages is the inbox of one node for the current superstep. Plain
// messaging delivers every message; combined messaging delivers at most
// one reduced value. A Messages value is reused by the engine and must not
// be retained after Compute returns.
type Messages[M any] struct {
	queue     []M
	pos       int
	single    M
	hasSingle bool
	consumed  bool
}

func (m *Messages[M]) resetQueue(queue []M) {
	var zero M
	m.queue = queue
	m.pos = 0
	m.single = zero
	m.hasSingle = false
	m.consumed = false
}

func (m *Messages[M]) resetSingle(value M, ok bool) {
	m.queue = nil
	m.pos = 0
	m.single = value
	m.hasSingle = ok
	m.consumed = false
}

// Next returns the next message
func (m *Messages[M]) Next() (M, bool) {
	if m.hasSingle {
		if m.consumed {
			var zero M
			return zero, false
		}
		m.consumed = true
		return m.single, true
	}
	if m.pos >= len(m.queue) {
		var zero M
		return zero, false
	}
	msg := m.queue[m.pos]
	m.pos++
	return msg, true
}

// All iterates the messages not yet returned by Next
func (m *Messages[M]) All() iter.Seq[M] {
	return func(yield func(M) bool) {
		for {
			msg, ok := m.Next()
			if !ok || !yield(msg) {
				return
			}
		}
	}
}

// Len returns the number of messages delivered to the node
func (m *Messages[M]) Len() int {
	if m.hasSingle {
		return 1
	}
	return len(m.queue)
}

// IsEmpty reports whether the node received no message
func (m *Messages[M]) IsEmpty() bool {
	return m.Len() == 0
}
