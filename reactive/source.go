package reactive

// Source is a value that can be resolved to its current value: a static
// value, a Ref, or a getter. Read registers the dependencies it touches with
// tr; a nil Tracker reads without tracking.
type Source[T any] interface {
	Read(tr *Tracker) T
}

// Tracker collects the dependencies read during one effect run.
type Tracker struct {
	effect *Effect
	deps   []dependency
}

type dependency interface {
	subscribe(e *Effect)
	unsubscribe(e *Effect)
}

func (tr *Tracker) track(d dependency) {
	if tr == nil || tr.effect == nil {
		return
	}
	for _, x := range tr.deps {
		if x == d {
			return
		}
	}
	tr.deps = append(tr.deps, d)
	d.subscribe(tr.effect)
}

type static[T any] struct{ v T }

func (s static[T]) Read(*Tracker) T { return s.v }

// Static wraps a plain value. It never triggers effects.
func Static[T any](v T) Source[T] { return static[T]{v: v} }

// Getter wraps a function computing a value from other sources. Sources read
// through the passed Tracker become dependencies of the calling effect.
func Getter[T any](fn func(tr *Tracker) T) Source[T] { return getter[T](fn) }

type getter[T any] func(tr *Tracker) T

func (g getter[T]) Read(tr *Tracker) T {
	if g == nil {
		var zero T
		return zero
	}
	return g(tr)
}

// Read resolves s with tracking. A nil Source resolves to the zero value.
func Read[T any](tr *Tracker, s Source[T]) T {
	if s == nil {
		var zero T
		return zero
	}
	return s.Read(tr)
}

// ToValue resolves s to its current value without tracking.
func ToValue[T any](s Source[T]) T { return Read[T](nil, s) }

// Map adapts a Source to another element type. Typical use is widening a
// typed Ref into a Source[any] for schema input.
func Map[T, U any](s Source[T], fn func(T) U) Source[U] {
	return Getter(func(tr *Tracker) U { return fn(Read(tr, s)) })
}

// Any widens s to Source[any].
func Any[T any](s Source[T]) Source[any] {
	if s == nil {
		return nil
	}
	return Map(s, func(v T) any { return v })
}
