package pregel

import (
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-pregel/pkg/bitset"
)

// Messenger buffers messages between supersteps. Messages sent during
// superstep k are visible to Receive only after SwapBuffers, in superstep
// k+1, and each is delivered exactly once.
//
// Send is safe for concurrent use from every compute step. Receive and
// HasMessages are called only by the step owning the node. SwapBuffers is
// called at the barrier while no step is running.
type Messenger[M any] interface {
	Send(target int64, message M)
	Receive(node int64, into *Messages[M])
	HasMessages(node int64) bool
	SwapBuffers()
	HasAnyMessage() bool
	Mode() Messaging
}

// lockStripes bounds the number of mutexes guarding per-node outboxes
const lockStripes = 1024

type stripedLocks [lockStripes]sync.Mutex

func (l *stripedLocks) lock(node int64) *sync.Mutex {
	mu := &l[node&(lockStripes-1)]
	mu.Lock()
	return mu
}

// queueMessenger keeps every message in a per-node queue
type queueMessenger[M any] struct {
	inbox   [][]M
	outbox  [][]M
	locks   stripedLocks
	sent    atomic.Int64
	pending int64
}

// NewQueueMessenger creates a PLAIN messenger for nodeCount nodes
func NewQueueMessenger[M any](nodeCount int64) Messenger[M] {
	return &queueMessenger[M]{
		inbox:  make([][]M, nodeCount),
		outbox: make([][]M, nodeCount),
	}
}

func (q *queueMessenger[M]) Send(target int64, message M) {
	mu := q.locks.lock(target)
	q.outbox[target] = append(q.outbox[target], message)
	mu.Unlock()
	q.sent.Add(1)
}

// Receive hands the queue to into and drains it. The backing array stays
// untouched until the next SwapBuffers, so into remains valid for the
// rest of the superstep.
func (q *queueMessenger[M]) Receive(node int64, into *Messages[M]) {
	into.resetQueue(q.inbox[node])
	q.inbox[node] = q.inbox[node][:0]
}

func (q *queueMessenger[M]) HasMessages(node int64) bool {
	return len(q.inbox[node]) > 0
}

func (q *queueMessenger[M]) SwapBuffers() {
	// Messages to nodes that were never processed are dropped here; the
	// engine processes every node holding messages, so this only happens
	// when a run is aborted.
	for i := range q.inbox {
		q.inbox[i] = q.inbox[i][:0]
	}
	q.inbox, q.outbox = q.outbox, q.inbox
	q.pending = q.sent.Swap(0)
}

func (q *queueMessenger[M]) HasAnyMessage() bool {
	return q.pending > 0
}

func (q *queueMessenger[M]) Mode() Messaging {
	return MessagingPlain
}

// reducingMessenger folds all messages to a node into one value
type reducingMessenger[M any] struct {
	reducer Reducer[M]
	send    []M
	recv    []M
	hasSend *bitset.AtomicBitSet
	hasRecv *bitset.AtomicBitSet
	locks   stripedLocks
}

// NewReducingMessenger creates a COMBINED messenger for nodeCount nodes
func NewReducingMessenger[M any](nodeCount int64, reducer Reducer[M]) Messenger[M] {
	return &reducingMessenger[M]{
		reducer: reducer,
		send:    make([]M, nodeCount),
		recv:    make([]M, nodeCount),
		hasSend: bitset.New(nodeCount),
		hasRecv: bitset.New(nodeCount),
	}
}

func (r *reducingMessenger[M]) Send(target int64, message M) {
	mu := r.locks.lock(target)
	current := r.send[target]
	if !r.hasSend.Get(target) {
		current = r.reducer.Identity()
	}
	r.send[target] = r.reducer.Reduce(current, message)
	r.hasSend.Set(target)
	mu.Unlock()
}

func (r *reducingMessenger[M]) Receive(node int64, into *Messages[M]) {
	if r.hasRecv.GetAndClear(node) {
		into.resetSingle(r.recv[node], true)
		return
	}
	var zero M
	into.resetSingle(zero, false)
}

func (r *reducingMessenger[M]) HasMessages(node int64) bool {
	return r.hasRecv.Get(node)
}

func (r *reducingMessenger[M]) SwapBuffers() {
	r.send, r.recv = r.recv, r.send
	r.hasSend, r.hasRecv = r.hasRecv, r.hasSend
	r.hasSend.ClearAll()
}

func (r *reducingMessenger[M]) HasAnyMessage() bool {
	return r.hasRecv.Cardinality() > 0
}

func (r *reducingMessenger[M]) Mode() Messaging {
	return MessagingCombined
}
