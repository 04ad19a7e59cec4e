package reactive

import (
	"fmt"
	"log/slog"
	"sync"
)

// Scheduler queues triggered effects and runs them one at a time. The first
// goroutine that has to flush drains the queue; writes made while a drain is
// in progress only enqueue. An effect triggered several times before it runs
// executes once.
type Scheduler struct {
	mu       sync.Mutex
	syncQ    []*Effect
	preQ     []*Effect
	draining bool

	logger  *slog.Logger
	onPanic func(e *Effect, recovered any)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used by the default panic handler.
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPanicHandler replaces the handler receiving values recovered from
// panicking effects. The scheduler keeps draining afterwards.
func WithPanicHandler(fn func(e *Effect, recovered any)) SchedulerOption {
	return func(s *Scheduler) {
		if fn != nil {
			s.onPanic = fn
		}
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{}
	for _, o := range opts {
		o(s)
	}
	if s.onPanic == nil {
		s.onPanic = s.logPanic
	}
	return s
}

var defaultScheduler = NewScheduler()

// batch holds notifications raised while a Batch is open.
var batch struct {
	mu      sync.Mutex
	depth   int
	pending []*Effect
}

// deferNotify queues subs when a batch is open and reports whether it did.
func deferNotify(subs []*Effect) bool {
	batch.mu.Lock()
	defer batch.mu.Unlock()
	if batch.depth == 0 {
		return false
	}
	for _, e := range subs {
		batch.pending = appendOnce(batch.pending, e)
	}
	return true
}

// Default returns the process-wide scheduler used when no other is given.
func Default() *Scheduler { return defaultScheduler }

// Batch runs fn and defers every effect triggered by its writes until fn
// returns, so that observers see all writes made by fn at once. The batch is
// process-wide: effects on any scheduler wait for it, and writes made by other
// goroutines meanwhile are delivered when it ends. Batches nest.
func Batch(fn func()) {
	batch.mu.Lock()
	batch.depth++
	batch.mu.Unlock()
	defer func() {
		batch.mu.Lock()
		batch.depth--
		var pending []*Effect
		if batch.depth == 0 {
			pending, batch.pending = batch.pending, nil
		}
		batch.mu.Unlock()
		for _, e := range pending {
			e.trigger()
		}
	}()
	fn()
}

// Batch is equivalent to the package-level Batch.
func (s *Scheduler) Batch(fn func()) { Batch(fn) }

// Flush runs every queued effect, including FlushPre ones, until the queue is
// empty. It returns immediately when another goroutine is draining.
func (s *Scheduler) Flush() { s.drain(true) }

// Pending returns the number of queued effects.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.syncQ) + len(s.preQ)
}

func (s *Scheduler) schedule(e *Effect, now bool) {
	if e.Stopped() {
		return
	}
	s.mu.Lock()
	if !e.queued {
		e.queued = true
		if now || e.flush == FlushSync {
			s.syncQ = append(s.syncQ, e)
		} else {
			s.preQ = append(s.preQ, e)
		}
	} else if now {
		// promote a queued FlushPre effect
		s.preQ = remove(s.preQ, e)
		s.syncQ = appendOnce(s.syncQ, e)
	}
	run := (now || e.flush == FlushSync) && !s.draining
	s.mu.Unlock()
	if run {
		s.drain(false)
	}
}

func (s *Scheduler) drain(all bool) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		var e *Effect
		switch {
		case len(s.syncQ) > 0:
			e, s.syncQ = s.syncQ[0], s.syncQ[1:]
		case all && len(s.preQ) > 0:
			e, s.preQ = s.preQ[0], s.preQ[1:]
		}
		if e == nil {
			break
		}
		e.queued = false
		s.mu.Unlock()
		s.run(e)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Scheduler) run(e *Effect) {
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(e, r)
		}
	}()
	e.run()
}

func (s *Scheduler) logPanic(e *Effect, recovered any) {
	l := s.logger
	if l == nil {
		l = slog.Default()
	}
	l.Error("reactive: effect panicked",
		slog.String("effect", e.name),
		slog.String("panic", fmt.Sprint(recovered)))
}

func remove(q []*Effect, e *Effect) []*Effect {
	for i, x := range q {
		if x == e {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

func appendOnce(q []*Effect, e *Effect) []*Effect {
	for _, x := range q {
		if x == e {
			return q
		}
	}
	return append(q, e)
}
