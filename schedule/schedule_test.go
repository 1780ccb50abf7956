package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// startQueue runs q until the test ends.
func startQueue(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestQueueSerializes(t *testing.T) {
	q := NewQueue(4)
	startQueue(t, q)

	var active, peak, total atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Do(context.Background(), func(context.Context) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(50 * time.Microsecond)
				active.Add(-1)
				total.Add(1)
				return nil
			})
			if err != nil {
				t.Errorf("Do() = %v", err)
			}
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
	if total.Load() != 32 {
		t.Errorf("jobs run = %d, want 32", total.Load())
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue(16)
	var order []int
	var results []<-chan error
	for i := range 10 {
		res, err := q.Submit(context.Background(), func(context.Context) error {
			order = append(order, i)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		results = append(results, res)
	}
	startQueue(t, q)
	for _, res := range results {
		<-res
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestQueueReturnsJobError(t *testing.T) {
	q := NewQueue(1)
	startQueue(t, q)
	want := errors.New("boom")
	if err := q.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue(4)
	res, err := q.Submit(context.Background(), func(context.Context) error {
		t.Error("pending job ran after Close")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	q.Close()
	if err := <-res; !errors.Is(err, ErrClosed) {
		t.Errorf("pending job result = %v, want ErrClosed", err)
	}
	if _, err := q.Submit(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
	if err := q.Run(context.Background()); err != nil {
		t.Errorf("Run on closed queue = %v, want nil", err)
	}
}

func TestQueueSkipsCanceledJobs(t *testing.T) {
	q := NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	res, err := q.Submit(ctx, func(context.Context) error {
		t.Error("canceled job ran")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	startQueue(t, q)
	if err := <-res; !errors.Is(err, context.Canceled) {
		t.Errorf("result = %v, want context.Canceled", err)
	}
}

func TestQueueRunTwice(t *testing.T) {
	q := NewQueue(1)
	startQueue(t, q)
	waitFor(t, "worker", q.running.Load)
	if err := q.Run(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}
}

func TestPipeSend(t *testing.T) {
	s := New(Options{})
	startQueue(t, s.Queue())

	var got []byte
	p := s.Pipe("input", func(_ context.Context, payload []byte, timer float32) error {
		got = payload
		if timer < 0 {
			t.Errorf("timer = %v, want >= 0", timer)
		}
		if len(payload) == 0 {
			return errors.New("empty payload")
		}
		return nil
	})
	buf := []byte("key")
	if err := p.Send(context.Background(), buf); err != nil {
		t.Fatalf("Send() = %v", err)
	}
	buf[0] = 'X'
	if string(got) != "key" {
		t.Errorf("payload = %q, want a copy of \"key\"", got)
	}
	if err := p.Send(context.Background(), nil); err == nil || err.Error() != "empty payload" {
		t.Errorf("Send(nil) = %v, want run error", err)
	}
	if p.Name() != "input" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func mustEvery(t *testing.T, s *Scheduler, name string, period time.Duration, fn RunFunc) *Timer {
	t.Helper()
	tm, err := s.Every(name, period, fn)
	if err != nil {
		t.Fatalf("Every(%q) = %v", name, err)
	}
	return tm
}

func TestEveryRejectsNonPositivePeriod(t *testing.T) {
	s := New(Options{})
	for _, period := range []time.Duration{0, -time.Second} {
		tm, err := s.Every("bad", period, func(context.Context, []byte, float32) error { return nil })
		if !errors.Is(err, ErrInvalidPeriod) || tm != nil {
			t.Errorf("Every(%v) = %v, %v; want nil, ErrInvalidPeriod", period, tm, err)
		}
	}
}

func TestTimerCoalescesTicks(t *testing.T) {
	s := New(Options{CoalesceTicks: true})
	startQueue(t, s.Queue())

	release := make(chan struct{})
	var runs atomic.Int32
	tm := mustEvery(t, s, "redraw", time.Hour, func(context.Context, []byte, float32) error {
		runs.Add(1)
		<-release
		return nil
	})
	ctx := context.Background()
	tm.tick(ctx)
	tm.tick(ctx)
	tm.tick(ctx)
	waitFor(t, "first run", func() bool { return runs.Load() == 1 })
	if tm.Fired() != 1 || tm.Dropped() != 2 {
		t.Errorf("fired %d dropped %d, want 1 and 2", tm.Fired(), tm.Dropped())
	}

	close(release)
	waitFor(t, "run to finish", func() bool { return !tm.pending.Load() })
	tm.tick(ctx)
	waitFor(t, "second run", func() bool { return runs.Load() == 2 })
	if tm.Dropped() != 2 {
		t.Errorf("dropped = %d after the run finished, want 2", tm.Dropped())
	}
}

func TestTimerWithoutCoalescingQueuesEveryTick(t *testing.T) {
	s := New(Options{QueueDepth: 8})
	var runs atomic.Int32
	tm := mustEvery(t, s, "log", time.Hour, func(context.Context, []byte, float32) error {
		runs.Add(1)
		return nil
	})
	ctx := context.Background()
	for range 3 {
		tm.tick(ctx)
	}
	startQueue(t, s.Queue())
	waitFor(t, "three runs", func() bool { return runs.Load() == 3 })
	if tm.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", tm.Dropped())
	}
}

func TestTimerStopDoesNotInterruptRun(t *testing.T) {
	var errs []error
	var mu sync.Mutex
	s := New(Options{CoalesceTicks: true, OnError: func(source string, err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}})
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool
	var runs atomic.Int32
	tm := mustEvery(t, s, "tick", time.Millisecond, func(ctx context.Context, _ []byte, _ float32) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		finished.Store(true)
		return errors.New("late")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-started
	tm.Stop()
	close(release)
	waitFor(t, "in-flight run", finished.Load)
	n := runs.Load()
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != n {
		t.Errorf("runs grew from %d to %d after Stop", n, runs.Load())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(errs) == 0 || errs[0].Error() != "late" {
		t.Errorf("OnError got %v, want the run error", errs)
	}
}

func TestEveryAfterRunStarts(t *testing.T) {
	s := New(Options{CoalesceTicks: true})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	waitFor(t, "queue", s.Queue().running.Load)

	fired := make(chan struct{}, 1)
	mustEvery(t, s, "late", time.Millisecond, func(context.Context, []byte, float32) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timer created after Run never fired")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v", err)
	}
}
