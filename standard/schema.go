package standard

import (
	"context"
	"errors"
)

// Schema is the capability every validation schema exposes. Implementations
// may validate synchronously (Done, Fail) or hand back a pending validation
// (Async). Callers never need a concrete schema type.
type Schema[T any] interface {
	Validate(ctx context.Context, input any) Validation[T]
}

// Vendor is an optional interface naming the library behind a schema.
type Vendor interface {
	Vendor() string
}

// VendorOf returns the schema vendor when s implements Vendor.
func VendorOf[T any](s Schema[T]) string {
	if v, ok := any(s).(Vendor); ok {
		return v.Vendor()
	}
	return ""
}

// Result is the outcome of a validation: a value on success, issues on
// failure.
type Result[T any] struct {
	Value  T
	Issues Issues
}

// Failed reports whether the result carries issues.
func (r Result[T]) Failed() bool { return len(r.Issues) > 0 }

// Success builds a successful Result.
func Success[T any](v T) Result[T] { return Result[T]{Value: v} }

// Failure builds a failed Result.
func Failure[T any](issues ...Issue) Result[T] { return Result[T]{Issues: issues} }

// Formatter transforms raw issues into a caller-defined error shape.
type Formatter[E any] func(issues Issues) E

// Identity is the default Formatter; it returns the issues unchanged.
func Identity(issues Issues) Issues { return issues }

// ErrPending is returned by Validation.Now when the validation has not been
// settled synchronously.
var ErrPending = errors.New("standard: validation is pending")

type settled[T any] struct {
	res Result[T]
	err error
}

// Validation is either an immediate outcome or a pending one. The zero value
// is an immediate success with the zero T.
type Validation[T any] struct {
	res     Result[T]
	err     error
	pending <-chan settled[T]
}

// Done wraps an immediate result.
func Done[T any](r Result[T]) Validation[T] { return Validation[T]{res: r} }

// Fail wraps a genuine error raised while validating. It is not a validation
// failure; callers propagate it.
func Fail[T any](err error) Validation[T] { return Validation[T]{err: err} }

// Async runs fn on its own goroutine and returns a pending Validation.
func Async[T any](ctx context.Context, fn func(ctx context.Context) (Result[T], error)) Validation[T] {
	ch := make(chan settled[T], 1)
	go func() {
		res, err := fn(ctx)
		ch <- settled[T]{res: res, err: err}
	}()
	return Validation[T]{pending: ch}
}

// Pending reports whether the outcome is not available synchronously.
func (v Validation[T]) Pending() bool { return v.pending != nil }

// Now returns the immediate outcome, or ErrPending for pending validations.
func (v Validation[T]) Now() (Result[T], error) {
	if v.pending != nil {
		return Result[T]{}, ErrPending
	}
	return v.res, v.err
}

// Wait returns the outcome, blocking on pending validations until they settle
// or ctx is done.
func (v Validation[T]) Wait(ctx context.Context) (Result[T], error) {
	if v.pending == nil {
		return v.res, v.err
	}
	select {
	case s := <-v.pending:
		return s.res, s.err
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}
