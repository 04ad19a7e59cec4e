package standard

import "context"

// Func adapts a synchronous validation function to Schema.
type Func[T any] func(ctx context.Context, input any) Result[T]

// Validate implements Schema.
func (f Func[T]) Validate(ctx context.Context, input any) Validation[T] {
	return Done(f(ctx, input))
}

// AsyncFunc adapts a blocking validation function to Schema. Every call runs
// on its own goroutine and yields a pending Validation.
type AsyncFunc[T any] func(ctx context.Context, input any) (Result[T], error)

// Validate implements Schema.
func (f AsyncFunc[T]) Validate(ctx context.Context, input any) Validation[T] {
	return Async(ctx, func(ctx context.Context) (Result[T], error) { return f(ctx, input) })
}

// Parser is the shape of parse-style schemas: a typed value, or an error that
// is Issues on validation failure.
type Parser[T any] interface {
	Parse(ctx context.Context, v any) (T, error)
}

// FromParser adapts a Parser to Schema. Errors that unwrap to Issues become
// validation failures; any other error is propagated as genuine.
func FromParser[T any](p Parser[T]) Schema[T] { return parserSchema[T]{p: p} }

type parserSchema[T any] struct{ p Parser[T] }

func (s parserSchema[T]) Validate(ctx context.Context, input any) Validation[T] {
	v, err := s.p.Parse(ctx, input)
	if err == nil {
		return Done(Success(v))
	}
	if iss, ok := AsIssues(err); ok && len(iss) > 0 {
		return Done(Failure[T](iss...))
	}
	return Fail[T](err)
}

func (s parserSchema[T]) Vendor() string {
	if v, ok := s.p.(Vendor); ok {
		return v.Vendor()
	}
	return ""
}
