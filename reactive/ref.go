package reactive

import "sync"

// Ref is a mutable cell whose writes notify the effects that read it.
// A Ref is safe for concurrent use.
type Ref[T any] struct {
	mu    sync.RWMutex
	value T
	equal func(a, b T) bool
	subs  map[*Effect]struct{}
}

// RefOption configures a Ref.
type RefOption[T any] func(*Ref[T])

// WithEqual makes Set skip notification when eq reports the new value equal
// to the current one. Without it every Set notifies.
func WithEqual[T any](eq func(a, b T) bool) RefOption[T] {
	return func(r *Ref[T]) { r.equal = eq }
}

// Comparable is WithEqual using ==.
func Comparable[T comparable]() RefOption[T] {
	return WithEqual(func(a, b T) bool { return a == b })
}

// NewRef creates a Ref holding v.
func NewRef[T any](v T, opts ...RefOption[T]) *Ref[T] {
	r := &Ref[T]{value: v}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Read returns the current value and registers tr's effect as a subscriber.
// A nil Ref reads as the zero value.
func (r *Ref[T]) Read(tr *Tracker) T {
	if r == nil {
		var zero T
		return zero
	}
	tr.track(r)
	return r.Get()
}

// Get returns the current value without tracking.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set stores v and notifies subscribers.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	if r.equal != nil && r.equal(r.value, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	subs := r.snapshotLocked()
	r.mu.Unlock()
	notify(subs)
}

// Update replaces the value with fn(current) atomically and notifies
// subscribers. fn must not access r.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	v := fn(r.value)
	if r.equal != nil && r.equal(r.value, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	subs := r.snapshotLocked()
	r.mu.Unlock()
	notify(subs)
}

// CompareAndSwap stores next only when the current value equals old. It
// reports whether the swap happened; subscribers are notified on swap.
func CompareAndSwap[T comparable](r *Ref[T], old, next T) bool {
	r.mu.Lock()
	if r.value != old {
		r.mu.Unlock()
		return false
	}
	r.value = next
	var subs []*Effect
	if old != next {
		subs = r.snapshotLocked()
	}
	r.mu.Unlock()
	notify(subs)
	return true
}

func (r *Ref[T]) snapshotLocked() []*Effect {
	if len(r.subs) == 0 {
		return nil
	}
	out := make([]*Effect, 0, len(r.subs))
	for e := range r.subs {
		out = append(out, e)
	}
	return out
}

func (r *Ref[T]) subscribe(e *Effect) {
	r.mu.Lock()
	if r.subs == nil {
		r.subs = make(map[*Effect]struct{})
	}
	r.subs[e] = struct{}{}
	r.mu.Unlock()
}

func (r *Ref[T]) unsubscribe(e *Effect) {
	r.mu.Lock()
	delete(r.subs, e)
	r.mu.Unlock()
}

func notify(subs []*Effect) {
	if len(subs) == 0 || deferNotify(subs) {
		return
	}
	for _, e := range subs {
		e.trigger()
	}
}
