package parallel

import (
	"fmt"
	"math"
	"runtime/debug"
	"sync"

	"github.com/dd0wney/cluso-pregel/pkg/logging"
)

// WorkerPool runs tasks on a fixed number of goroutines. A pool is created
// once per run and reused for every superstep.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
}

// PoolOption configures a WorkerPool
type PoolOption func(*WorkerPool)

// WithLogger sets the logger that reports panics of Submit tasks. The
// default is logging.DefaultLogger().
func WithLogger(logger logging.Logger) PoolOption {
	return func(wp *WorkerPool) {
		if logger != nil {
			wp.logger = logger
		}
	}
}

// Task is a unit of work dispatched by RunAll
type Task func() error

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// ErrPoolClosed is returned by RunAll after Close
var ErrPoolClosed = fmt.Errorf("worker pool is closed")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// PanicError wraps a value recovered from a panicking task
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes a panicked error value to errors.Is / errors.As
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// Returns an error if the worker count exceeds MaxWorkers.
func NewWorkerPool(workers int, opts ...PoolOption) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.runTask(task)
	}
}

// runTask keeps the worker alive when a Submit task panics. RunAll tasks
// recover on their own and return the panic as a *PanicError.
func (wp *WorkerPool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker pool task panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())))
		}
	}()
	task()
}

// Submit adds a task to the worker pool
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- task
	return true
}

// RunAll dispatches every task to the pool and blocks until all of them have
// returned. It returns the first error observed, in completion order. A
// panicking task is reported as a *PanicError.
func (wp *WorkerPool) RunAll(tasks []Task) error {
	var (
		barrier  sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	record := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for _, task := range tasks {
		barrier.Add(1)
		submitted := wp.Submit(func() {
			defer barrier.Done()
			defer func() {
				if r := recover(); r != nil {
					record(&PanicError{Value: r, Stack: debug.Stack()})
				}
			}()
			if err := task(); err != nil {
				record(err)
			}
		})
		if !submitted {
			barrier.Done()
			record(ErrPoolClosed)
		}
	}

	barrier.Wait()
	return firstErr
}

// Close shuts down the worker pool and waits for queued tasks to finish
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
