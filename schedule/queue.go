package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned for work submitted to, or pending in, a
	// closed queue.
	ErrClosed = errors.New("schedule: queue closed")

	// ErrRunning is returned by Queue.Run when the queue already has a
	// worker.
	ErrRunning = errors.New("schedule: queue already running")

	// ErrInvalidPeriod is returned by Scheduler.Every for a period that
	// is not positive.
	ErrInvalidPeriod = errors.New("schedule: timer period must be positive")
)

// DefaultQueueDepth is the number of pending jobs a queue buffers when
// created with a non-positive depth.
const DefaultQueueDepth = 64

// Job is one unit of serialized work.
type Job func(ctx context.Context) error

type job struct {
	ctx    context.Context
	fn     Job
	result chan error
}

// Queue executes jobs one at a time in submission order on a single
// worker goroutine started by Run.
//
// Queue is safe for concurrent use.
type Queue struct {
	jobs chan job
	done chan struct{}

	// mu is held shared by submitters and exclusively by Close, so no
	// job can slip into the buffer after Close drained it.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	running atomic.Bool
}

// NewQueue creates a queue buffering up to depth pending jobs.
func NewQueue(depth int) *Queue {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Queue{
		jobs: make(chan job, depth),
		done: make(chan struct{}),
	}
}

// Submit enqueues fn and returns a channel that receives its result. It
// blocks while the queue is full.
func (q *Queue) Submit(ctx context.Context, fn Job) (<-chan error, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrClosed
	}
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case q.jobs <- j:
		return j.result, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do submits fn and waits for its result.
func (q *Queue) Do(ctx context.Context, fn Job) error {
	res, err := q.Submit(ctx, fn)
	if err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int { return len(q.jobs) }

// Run executes jobs until ctx is done or the queue is closed. Cancelling
// ctx closes the queue. A job whose own context is done when its turn
// comes is skipped.
func (q *Queue) Run(ctx context.Context) error {
	if !q.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer q.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			q.Close()
			return nil
		case <-q.done:
			return nil
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.result <- err
				continue
			}
			j.result <- j.fn(j.ctx)
		}
	}
}

// Close stops accepting jobs and fails every pending job with ErrClosed.
// A job already executing finishes normally.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		for {
			select {
			case j := <-q.jobs:
				j.result <- ErrClosed
			default:
				return
			}
		}
	})
}
