package goform

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/standard"
)

const instrumentationName = "github.com/reoring/goform"

// Element is the validity capability of a bound UI form element, modelled on
// native HTML forms.
type Element interface {
	CheckValidity() bool
	ReportValidity()
}

// SubmitFunc is the submit callback of forms with an input or a schema. value
// is the validated output (or the raw input when no schema is in effect);
// args are the arguments passed to Form.Submit.
type SubmitFunc[T, R any] func(ctx context.Context, value T, args ...any) (R, error)

// Options configures a Form. E is the error shape stored in Form.Errors.
// Every field is optional. The Ref fields let several forms share state; the
// last writer wins.
type Options[E any] struct {
	// FormatErrors transforms raw issues into E. Required unless E can hold
	// standard.Issues.
	FormatErrors standard.Formatter[E]
	// OnErrors is called when validation fails, or when the submit callback
	// left non-empty errors in Form.Errors.
	OnErrors func(ctx context.Context, errs E) error

	Element    *reactive.Ref[Element]
	Submitting *reactive.Ref[bool]
	Submitted  *reactive.Ref[bool]
	Errors     *reactive.Ref[E]

	Logger *slog.Logger
	Tracer trace.Tracer
}

// ParseOptions configures a Parser.
type ParseOptions[E any] struct {
	// FormatErrors transforms raw issues into E. Required unless E can hold
	// standard.Issues.
	FormatErrors standard.Formatter[E]
	// OnError receives genuine errors raised by the schema. The default logs
	// them.
	OnError func(err error)

	Flush     reactive.Flush
	Scheduler *reactive.Scheduler
	// Context is handed to the schema on every run. Defaults to Background.
	Context context.Context
	Logger  *slog.Logger
}

// lastOpt returns the last element of opts; later options win, as with the
// variadic option parameters elsewhere in the module.
func lastOpt[O any](opts []O) O {
	var opt O
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func resolveFormatter[E any](f standard.Formatter[E]) (standard.Formatter[E], error) {
	if f != nil {
		return f, nil
	}
	if _, ok := any(standard.Issues(nil)).(E); !ok {
		return nil, ErrFormatterRequired
	}
	return func(iss standard.Issues) E {
		e, _ := any(iss).(E)
		return e
	}, nil
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

func tracerOr(t trace.Tracer) trace.Tracer {
	if t != nil {
		return t
	}
	return otel.Tracer(instrumentationName)
}
