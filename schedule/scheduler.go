package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/termgpu/internal/logx"
)

// RunFunc performs one run. payload is nil for timer runs; timer is the
// number of seconds since the scheduler was created.
type RunFunc func(ctx context.Context, payload []byte, timer float32) error

// Options configure a Scheduler.
type Options struct {
	// QueueDepth bounds the number of pending runs.
	QueueDepth int
	// CoalesceTicks drops a timer tick while the previous tick of the
	// same timer is pending or running.
	CoalesceTicks bool
	// OnError receives the failures of timer runs, which have no caller
	// to return them to.
	OnError func(source string, err error)
}

// Scheduler owns the run queue of one resource graph and the pipes and
// timers feeding it.
type Scheduler struct {
	queue    *Queue
	start    time.Time
	coalesce bool
	onError  func(string, error)

	mu     sync.Mutex
	timers []*Timer
	group  *errgroup.Group
	ctx    context.Context
}

// New creates a scheduler. Nothing runs until Run is called.
func New(opts Options) *Scheduler {
	return &Scheduler{
		queue:    NewQueue(opts.QueueDepth),
		start:    time.Now(),
		coalesce: opts.CoalesceTicks,
		onError:  opts.OnError,
	}
}

// Queue returns the run queue.
func (s *Scheduler) Queue() *Queue { return s.queue }

// Elapsed returns the seconds since the scheduler was created.
func (s *Scheduler) Elapsed() float32 {
	return float32(time.Since(s.start).Seconds())
}

// Run drives the queue and all timers until ctx is done, then closes the
// queue and waits for them to stop.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.queue.Run(gctx) })

	s.mu.Lock()
	s.group, s.ctx = g, gctx
	for _, t := range s.timers {
		s.startTimer(t)
	}
	logx.Logger().Debug("schedule: running", "timers", len(s.timers))
	s.mu.Unlock()

	g.Go(func() error {
		<-gctx.Done()
		s.mu.Lock()
		s.group, s.ctx = nil, nil
		s.mu.Unlock()
		return nil
	})
	return g.Wait()
}

func (s *Scheduler) report(source string, err error) {
	logx.Logger().Warn("schedule: run failed", "source", source, "err", err)
	if s.onError != nil {
		s.onError(source, err)
	}
}

// Pipe is a named entry point whose runs are triggered by data.
type Pipe struct {
	name string
	s    *Scheduler
	fn   RunFunc
}

// Pipe creates a pipe that runs fn for every Send.
func (s *Scheduler) Pipe(name string, fn RunFunc) *Pipe {
	return &Pipe{name: name, s: s, fn: fn}
}

// Name returns the pipe name.
func (p *Pipe) Name() string { return p.name }

// Send queues a run with a copy of payload and waits for it to finish.
// It returns the run's error.
func (p *Pipe) Send(ctx context.Context, payload []byte) error {
	data := append([]byte(nil), payload...)
	return p.s.queue.Do(ctx, func(ctx context.Context) error {
		return p.fn(ctx, data, p.s.Elapsed())
	})
}

// Timer triggers runs periodically.
type Timer struct {
	name     string
	period   time.Duration
	fn       RunFunc
	s        *Scheduler
	coalesce bool

	stop     chan struct{}
	stopOnce sync.Once
	started  bool

	pending atomic.Bool
	fired   atomic.Int64
	dropped atomic.Int64
}

// Every creates a timer running fn each period. Timers created before
// Run start with it; later ones start immediately if the scheduler is
// running.
func (s *Scheduler) Every(name string, period time.Duration, fn RunFunc) (*Timer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: timer %q has period %v", ErrInvalidPeriod, name, period)
	}
	t := &Timer{
		name:     name,
		period:   period,
		fn:       fn,
		s:        s,
		coalesce: s.coalesce,
		stop:     make(chan struct{}),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, t)
	if s.group != nil {
		s.startTimer(t)
	}
	return t, nil
}

// startTimer requires s.mu.
func (s *Scheduler) startTimer(t *Timer) {
	if t.started {
		return
	}
	t.started = true
	ctx := s.ctx
	s.group.Go(func() error { return t.loop(ctx) })
}

// Name returns the timer name.
func (t *Timer) Name() string { return t.name }

// Stop cancels future ticks. A run already queued or executing completes.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Fired returns the number of ticks that queued a run.
func (t *Timer) Fired() int64 { return t.fired.Load() }

// Dropped returns the number of ticks dropped by coalescing.
func (t *Timer) Dropped() int64 { return t.dropped.Load() }

func (t *Timer) loop(ctx context.Context) error {
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stop:
			return nil
		case <-tk.C:
			t.tick(ctx)
		}
	}
}

func (t *Timer) tick(ctx context.Context) {
	select {
	case <-t.stop:
		return
	default:
	}
	if t.coalesce && !t.pending.CompareAndSwap(false, true) {
		t.dropped.Add(1)
		logx.Logger().Debug("schedule: tick dropped", "timer", t.name)
		return
	}
	timer := t.s.Elapsed()
	_, err := t.s.queue.Submit(ctx, func(ctx context.Context) error {
		defer t.pending.Store(false)
		err := t.fn(ctx, nil, timer)
		if err != nil {
			t.s.report(t.name, err)
		}
		return err
	})
	if err != nil {
		t.pending.Store(false)
		return
	}
	t.fired.Add(1)
}
