package reactive

import "sync"

// Flush selects when a triggered effect re-runs.
type Flush int

const (
	// FlushSync re-runs the effect as soon as a dependency changes (or at the
	// end of the enclosing Batch).
	FlushSync Flush = iota
	// FlushPre queues the effect until Scheduler.Flush is called.
	FlushPre
)

// String implements fmt.Stringer.
func (f Flush) String() string {
	switch f {
	case FlushSync:
		return "sync"
	case FlushPre:
		return "pre"
	}
	return "unknown"
}

// Effect is a function re-run whenever a source it read during its previous
// run changes.
type Effect struct {
	sched *Scheduler
	fn    func(tr *Tracker)
	flush Flush
	name  string

	mu      sync.Mutex
	deps    []dependency
	stopped bool

	// guarded by sched.mu
	queued bool
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithFlush sets the flush mode. The default is FlushSync.
func WithFlush(f Flush) EffectOption { return func(e *Effect) { e.flush = f } }

// WithScheduler attaches the effect to s instead of the default scheduler.
func WithScheduler(s *Scheduler) EffectOption {
	return func(e *Effect) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithName labels the effect in logs.
func WithName(name string) EffectOption { return func(e *Effect) { e.name = name } }

// WatchEffect registers fn and runs it once right away. Afterwards fn re-runs
// whenever a source it read through tr changes. If the scheduler is busy
// draining on another goroutine, the first run happens in that drain.
func WatchEffect(fn func(tr *Tracker), opts ...EffectOption) *Effect {
	e := &Effect{sched: Default(), fn: fn}
	for _, o := range opts {
		o(e)
	}
	e.sched.schedule(e, true)
	return e
}

// Name returns the label given with WithName.
func (e *Effect) Name() string { return e.name }

// Run re-runs the effect now, regardless of its flush mode.
func (e *Effect) Run() { e.sched.schedule(e, true) }

// Stop detaches the effect from its dependencies. It never runs again.
func (e *Effect) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	deps := e.deps
	e.deps = nil
	e.mu.Unlock()
	for _, d := range deps {
		d.unsubscribe(e)
	}
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

func (e *Effect) trigger() { e.sched.schedule(e, false) }

func (e *Effect) run() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	old := e.deps
	e.deps = nil
	e.mu.Unlock()
	for _, d := range old {
		d.unsubscribe(e)
	}

	tr := &Tracker{effect: e}
	defer func() {
		e.mu.Lock()
		stopped := e.stopped
		if !stopped {
			e.deps = tr.deps
		}
		e.mu.Unlock()
		if stopped {
			for _, d := range tr.deps {
				d.unsubscribe(e)
			}
		}
	}()
	e.fn(tr)
}
