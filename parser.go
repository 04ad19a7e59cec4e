package goform

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/standard"
)

// Parser re-validates its input whenever the input or the schema changes and
// publishes the outcome. Result, Output and Errors are written together in
// one reactive.Batch, so effects observing them, on any scheduler, never see
// a partial update.
//
// Only synchronous schemas are supported. A run whose schema returns a
// pending validation is logged and skipped, leaving the previous outcome in
// place.
type Parser[T, E any] struct {
	// Result holds the raw result of the last run; nil before the first one.
	Result *reactive.Ref[*standard.Result[T]]
	// Output holds the validated value after a successful run, nil otherwise.
	Output *reactive.Ref[*T]
	// Errors holds the formatted issues after a failed run, the zero E
	// otherwise.
	Errors *reactive.Ref[E]

	input   reactive.Source[any]
	schema  reactive.Source[standard.Schema[T]]
	format  standard.Formatter[E]
	onError func(error)
	sched   *reactive.Scheduler
	ctx     context.Context
	logger  *slog.Logger
	effect  *reactive.Effect
}

// NewParser creates a Parser and runs it once. Subsequent runs happen
// whenever a Ref read while resolving input or schema changes, following
// the configured flush mode.
func NewParser[T, E any](input reactive.Source[any], schema reactive.Source[standard.Schema[T]], opts ...ParseOptions[E]) (*Parser[T, E], error) {
	opt := lastOpt(opts)
	format, err := resolveFormatter(opt.FormatErrors)
	if err != nil {
		return nil, err
	}
	p := &Parser[T, E]{
		Result:  reactive.NewRef[*standard.Result[T]](nil),
		Output:  reactive.NewRef[*T](nil),
		input:   input,
		schema:  schema,
		format:  format,
		onError: opt.OnError,
		sched:   opt.Scheduler,
		ctx:     opt.Context,
		logger:  loggerOr(opt.Logger),
	}
	var zero E
	p.Errors = reactive.NewRef(zero)
	if p.sched == nil {
		p.sched = reactive.Default()
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}
	if p.onError == nil {
		p.onError = func(err error) {
			p.logger.ErrorContext(p.ctx, "goform: parse failed", slog.Any("error", err))
		}
	}
	p.effect = reactive.WatchEffect(p.run,
		reactive.WithScheduler(p.sched),
		reactive.WithFlush(opt.Flush),
		reactive.WithName("goform.parse"),
	)
	return p, nil
}

// Recompute re-runs validation now, regardless of the flush mode.
func (p *Parser[T, E]) Recompute() { p.effect.Run() }

// Stop detaches the parser from its sources. The published values stay as
// they are.
func (p *Parser[T, E]) Stop() { p.effect.Stop() }

func (p *Parser[T, E]) run(tr *reactive.Tracker) {
	s := reactive.Read(tr, p.schema)
	in := reactive.Read(tr, p.input)
	if s == nil {
		p.onError(ErrNilSchema)
		return
	}
	res, err := s.Validate(p.ctx, in).Now()
	if errors.Is(err, standard.ErrPending) {
		p.logger.ErrorContext(p.ctx, ErrPendingValidation.Error(), slog.String("vendor", standard.VendorOf(s)))
		return
	}
	if err != nil {
		p.onError(err)
		return
	}

	reactive.Batch(func() {
		p.Result.Set(&res)
		if res.Failed() {
			p.Output.Set(nil)
			p.Errors.Set(p.format(res.Issues))
			return
		}
		v := res.Value
		var zero E
		p.Output.Set(&v)
		p.Errors.Set(zero)
	})
}
