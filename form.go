package goform

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/standard"
)

// Form coordinates a submit lifecycle: element validity check, optional
// schema validation, the submit callback, and the Submitting / Submitted /
// Errors state around them.
//
// The exported Refs may be read (and observed by effects) freely. The submit
// callback may write Errors to report failures it detected itself, for example
// server-side ones; Submitted then stays false and OnErrors is called.
type Form[R, E any] struct {
	Element    *reactive.Ref[Element]
	Submitting *reactive.Ref[bool]
	Submitted  *reactive.Ref[bool]
	Errors     *reactive.Ref[E]

	prepare  prepareFunc[R]
	format   standard.Formatter[E]
	onErrors func(ctx context.Context, errs E) error
	logger   *slog.Logger
	tracer   trace.Tracer

	busy atomic.Bool
	gen  atomic.Uint64
}

// prepareFunc resolves the current input, validates it and returns the
// callback invocation bound to the value, or the validation issues.
type prepareFunc[R any] func(ctx context.Context) (call func(ctx context.Context, args []any) (R, error), issues standard.Issues, err error)

// New builds a Form without input. The callback receives only the arguments
// passed to Submit.
func New[R, E any](submit func(ctx context.Context, args ...any) (R, error), opts ...Options[E]) (*Form[R, E], error) {
	prepare := func(context.Context) (func(context.Context, []any) (R, error), standard.Issues, error) {
		return func(ctx context.Context, args []any) (R, error) {
			if submit == nil {
				var zero R
				return zero, nil
			}
			return submit(ctx, args...)
		}, nil, nil
	}
	return newForm(prepare, lastOpt(opts))
}

// Use is the callback-only shortcut of New with raw issues as the error type.
func Use[R any](submit func(ctx context.Context, args ...any) (R, error)) *Form[R, standard.Issues] {
	f, _ := New[R, standard.Issues](submit)
	return f
}

// NewWithInput builds a Form whose callback receives the current input value
// followed by the Submit arguments. input may be a static value, a Ref or a
// getter; it is resolved at every Submit.
func NewWithInput[T, R, E any](input reactive.Source[T], submit SubmitFunc[T, R], opts ...Options[E]) (*Form[R, E], error) {
	prepare := func(context.Context) (func(context.Context, []any) (R, error), standard.Issues, error) {
		v := reactive.ToValue(input)
		return bind(submit, v), nil, nil
	}
	return newForm(prepare, lastOpt(opts))
}

// NewWithSchema builds a Form that validates the input with schema before
// calling submit with the validated output. Both input and schema are
// resolved at every Submit.
//
// When the schema resolves to nil, the raw input is handed to submit if it is
// assignable to T (a nil input becomes the zero T); otherwise Submit returns
// ErrInputType.
func NewWithSchema[T, R, E any](input reactive.Source[any], schema reactive.Source[standard.Schema[T]], submit SubmitFunc[T, R], opts ...Options[E]) (*Form[R, E], error) {
	prepare := func(ctx context.Context) (func(context.Context, []any) (R, error), standard.Issues, error) {
		in := reactive.ToValue(input)
		s := reactive.ToValue(schema)
		if s == nil {
			if in == nil {
				var zero T
				return bind(submit, zero), nil, nil
			}
			v, ok := in.(T)
			if !ok {
				return nil, nil, ErrInputType
			}
			return bind(submit, v), nil, nil
		}
		res, err := s.Validate(ctx, in).Wait(ctx)
		if err != nil {
			return nil, nil, err
		}
		if res.Failed() {
			return nil, res.Issues, nil
		}
		return bind(submit, res.Value), nil, nil
	}
	return newForm(prepare, lastOpt(opts))
}

func bind[T, R any](submit SubmitFunc[T, R], v T) func(context.Context, []any) (R, error) {
	return func(ctx context.Context, args []any) (R, error) {
		if submit == nil {
			var zero R
			return zero, nil
		}
		return submit(ctx, v, args...)
	}
}

func newForm[R, E any](prepare prepareFunc[R], opt Options[E]) (*Form[R, E], error) {
	format, err := resolveFormatter(opt.FormatErrors)
	if err != nil {
		return nil, err
	}
	f := &Form[R, E]{
		Element:    opt.Element,
		Submitting: opt.Submitting,
		Submitted:  opt.Submitted,
		Errors:     opt.Errors,
		prepare:    prepare,
		format:     format,
		onErrors:   opt.OnErrors,
		logger:     loggerOr(opt.Logger),
		tracer:     tracerOr(opt.Tracer),
	}
	if f.Element == nil {
		f.Element = reactive.NewRef[Element](nil)
	}
	if f.Submitting == nil {
		f.Submitting = reactive.NewRef(false, reactive.Comparable[bool]())
	}
	if f.Submitted == nil {
		f.Submitted = reactive.NewRef(false, reactive.Comparable[bool]())
	}
	if f.Errors == nil {
		var zero E
		f.Errors = reactive.NewRef(zero)
	}
	return f, nil
}

// Submit runs one submit cycle and returns the callback's result. ok reports
// whether the cycle reached the submit step; it is false when the call was
// dropped because a cycle is in flight, when the bound element is invalid,
// or when validation failed. Validation failures never surface as err: they
// are stored in Errors and handed to OnErrors. err carries genuine failures
// from the schema, the callback or OnErrors, unchanged.
//
// Submitting is true for the duration of the cycle and is reset on every
// exit path, panics included.
func (f *Form[R, E]) Submit(ctx context.Context, args ...any) (res R, ok bool, err error) {
	if f.Submitting.Get() {
		f.logger.DebugContext(ctx, "goform: submit dropped, already submitting")
		return res, false, nil
	}
	if !f.busy.CompareAndSwap(false, true) {
		f.logger.DebugContext(ctx, "goform: submit dropped, already submitting")
		return res, false, nil
	}
	claimed := false
	defer func() {
		if claimed {
			f.Submitting.Set(false)
		}
		f.busy.Store(false)
	}()

	f.Submitted.Set(false)
	var noErrors E
	f.Errors.Set(noErrors)

	if el := f.Element.Get(); el != nil && !el.CheckValidity() {
		el.ReportValidity()
		f.logger.DebugContext(ctx, "goform: element reported invalid")
		return res, false, nil
	}
	if !reactive.CompareAndSwap(f.Submitting, false, true) {
		f.logger.DebugContext(ctx, "goform: submit dropped, shared submitting flag is taken")
		return res, false, nil
	}
	claimed = true
	gen := f.gen.Load()

	id := uuid.NewString()
	log := f.logger.With(slog.String("submission_id", id))
	ctx, span := f.tracer.Start(ctx, "goform.submit", trace.WithAttributes(
		attribute.String("goform.submission_id", id),
		attribute.Int("goform.args", len(args)),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	call, issues, err := f.prepare(ctx)
	if err != nil {
		return res, false, err
	}
	if len(issues) > 0 {
		span.SetAttributes(attribute.String("goform.outcome", "invalid"), attribute.Int("goform.issues", len(issues)))
		log.DebugContext(ctx, "goform: validation failed", slog.Int("issues", len(issues)))
		if f.stale(gen) {
			return res, false, nil
		}
		errs := f.format(issues)
		f.Errors.Set(errs)
		return res, false, f.reportErrors(ctx, errs)
	}

	if err := ctx.Err(); err != nil {
		return res, false, err
	}
	res, err = call(ctx, args)
	if err != nil {
		span.SetAttributes(attribute.String("goform.outcome", "failed"))
		return res, true, err
	}
	if f.stale(gen) {
		span.SetAttributes(attribute.String("goform.outcome", "stale"))
		log.DebugContext(ctx, "goform: form was reset during submit, result discarded")
		return res, true, nil
	}
	if errs := f.Errors.Get(); !isEmptyErrors(errs) {
		span.SetAttributes(attribute.String("goform.outcome", "rejected"))
		log.DebugContext(ctx, "goform: submit callback reported errors")
		return res, true, f.reportErrors(ctx, errs)
	}
	f.Submitted.Set(true)
	span.SetAttributes(attribute.String("goform.outcome", "submitted"))
	log.DebugContext(ctx, "goform: submitted")
	return res, true, nil
}

// Reset clears Submitted and Errors and detaches any in-flight cycle: a cycle
// that finishes after Reset still releases Submitting but no longer writes
// Submitted or Errors and does not call OnErrors. Use it when the owner of the
// form goes away or restarts mid-submit.
func (f *Form[R, E]) Reset() {
	f.gen.Add(1)
	f.Submitted.Set(false)
	var zero E
	f.Errors.Set(zero)
}

func (f *Form[R, E]) stale(gen uint64) bool { return f.gen.Load() != gen }

func (f *Form[R, E]) reportErrors(ctx context.Context, errs E) error {
	if f.onErrors == nil {
		return nil
	}
	return f.onErrors(ctx, errs)
}
