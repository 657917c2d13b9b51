package dbexec

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("dbexec: executor is closed")

// DefaultWorkers bounds concurrent store operations per process.
const DefaultWorkers = 5

type job struct {
	fn   func() error
	done chan error
}

// Executor is a fixed-size pool that runs blocking store calls so request
// handling never queues unbounded database work. Callers submit a closure
// and wait for its result; the pool size is the hard cap on in-flight
// database operations.
type Executor struct {
	jobs chan job
	stop chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// New creates an executor with the given number of workers and starts them.
func New(workers int) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	e := &Executor{
		jobs: make(chan job),
		stop: make(chan struct{}),
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.run()
	}
	return e
}

func (e *Executor) run() {
	defer e.wg.Done()
	for {
		select {
		case j, ok := <-e.jobs:
			if !ok {
				return
			}
			j.done <- j.fn()
		case <-e.stop:
			return
		}
	}
}

// Do submits fn and waits for it to complete. If ctx is done before a worker
// picks the job up, Do returns the context error and fn never runs. Once a
// worker has started fn, Do waits for it regardless of ctx so completed
// writes are never misreported as cancelled.
func (e *Executor) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case e.jobs <- j:
		return <-j.done
	case <-e.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers after in-flight jobs finish. Pending submissions
// fail with ErrClosed.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		close(e.stop)
	})
	e.wg.Wait()
}
