// Package httpform exposes goform forms over HTTP: every request decodes its
// body, runs one submit cycle against a schema and writes a JSON response.
package httpform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	j "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/source"
	"github.com/reoring/goform/standard"
)

// Options configures Handler and Middleware.
type Options struct {
	Decode source.Opt
	// Format shapes validation errors. Defaults to goform.Flatten.
	Format standard.Formatter[goform.FlatErrors]
	// SuccessStatus is the status written by Handler on success. Defaults to
	// 200.
	SuccessStatus int
	// Localize rewrites coded issue messages in the language negotiated from
	// the Accept-Language header, or in the process-wide language (see
	// i18n.SetLanguage) when the header is absent.
	Localize bool
	Logger        *slog.Logger
	Tracer        trace.Tracer
}

// ctxKeyValue is a typed context key for validated values. The type parameter
// keeps keys of different T apart.
type ctxKeyValue[T any] struct{}

// ContextWithValue attaches a validated value to ctx.
func ContextWithValue[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyValue[T]{}, v)
}

// ValueFromContext retrieves the value stored by Middleware or
// ContextWithValue.
func ValueFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyValue[T]{}).(T)
	return v, ok
}

// ErrorPayload is the body written for rejected submissions.
type ErrorPayload struct {
	Errors goform.FlatErrors `json:"errors"`
	Issues []IssueView       `json:"issues,omitempty"`
}

// IssueView is the wire form of a standard.Issue; Path is a JSON Pointer.
type IssueView struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	Code    string `json:"code,omitempty"`
}

// NewErrorPayload builds the response body for issues.
func NewErrorPayload(issues standard.Issues, format standard.Formatter[goform.FlatErrors]) ErrorPayload {
	if format == nil {
		format = goform.Flatten
	}
	views := make([]IssueView, len(issues))
	for i, it := range issues {
		views[i] = IssueView{Message: it.Message, Path: standard.Pointer(it.Path), Code: it.Code}
	}
	return ErrorPayload{Errors: format(issues), Issues: views}
}

// Handler decodes each request, validates it with schema and passes the
// output to submit. Responses:
//
//	200 {"data": R}           submitted
//	422 ErrorPayload          validation failed, or submit returned standard.Issues
//	400/413/415 {"error"}     body could not be decoded
//	500 {"error"}             schema or submit returned an error
func Handler[T, R any](schema standard.Schema[T], submit goform.SubmitFunc[T, R], opts ...Options) http.Handler {
	opt := lastOpt(opts)
	log := loggerOr(opt.Logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, rejected, err := run(r, schema, submit, opt)
		switch {
		case err != nil:
			writeFailure(w, r, log, err)
		case rejected != nil:
			writeJSON(w, http.StatusUnprocessableEntity, *rejected)
		default:
			status := opt.SuccessStatus
			if status == 0 {
				status = http.StatusOK
			}
			writeJSON(w, status, map[string]any{"data": res})
		}
	})
}

// Middleware validates each request body with schema and calls next with the
// validated value stored in the request context (see ValueFromContext).
// Rejected requests never reach next.
func Middleware[T any](schema standard.Schema[T], opts ...Options) func(http.Handler) http.Handler {
	opt := lastOpt(opts)
	log := loggerOr(opt.Logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			submit := func(ctx context.Context, v T, _ ...any) (struct{}, error) {
				next.ServeHTTP(w, r.WithContext(ContextWithValue(ctx, v)))
				return struct{}{}, nil
			}
			_, rejected, err := run(r, schema, submit, opt)
			switch {
			case err != nil:
				writeFailure(w, r, log, err)
			case rejected != nil:
				writeJSON(w, http.StatusUnprocessableEntity, *rejected)
			}
		})
	}
}

// run drives a single-use form for r. rejected is set when validation failed
// or when submit returned standard.Issues. A single-use form without an
// element never drops its only submit, so success is the remaining outcome.
func run[T, R any](r *http.Request, schema standard.Schema[T], submit goform.SubmitFunc[T, R], opt Options) (res R, rejected *ErrorPayload, err error) {
	input, err := source.FromRequest(r, opt.Decode)
	if err != nil {
		return res, nil, decodeError{err}
	}
	var issues standard.Issues
	form, err := goform.NewWithSchema[T, R, standard.Issues](
		reactive.Static(input),
		reactive.Static(schema),
		submit,
		goform.Options[standard.Issues]{
			OnErrors: func(_ context.Context, iss standard.Issues) error {
				issues = iss
				return nil
			},
			Logger: opt.Logger,
			Tracer: opt.Tracer,
		},
	)
	if err != nil {
		return res, nil, err
	}
	res, _, err = form.Submit(r.Context())
	if iss, ok := standard.AsIssues(err); ok && len(iss) > 0 {
		issues, err = iss, nil
	}
	if err != nil {
		return res, nil, err
	}
	if len(issues) > 0 {
		if opt.Localize {
			issues = i18n.Localize(requestTranslator(r), standard.Identity)(issues)
		}
		p := NewErrorPayload(issues, opt.Format)
		return res, &p, nil
	}
	return res, nil, nil
}

// requestTranslator negotiates from Accept-Language. Without the header it
// returns nil, which selects the process-wide translator.
func requestTranslator(r *http.Request) i18n.Translator {
	al := r.Header.Get("Accept-Language")
	if al == "" {
		return nil
	}
	_, tr := i18n.Negotiate(al)
	return tr
}

func writeFailure(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, source.ErrTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, source.ErrUnsupportedMediaType):
		status, msg = http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, goform.ErrInputType):
		status, msg = http.StatusBadRequest, err.Error()
	case isDecodeError(err):
		status, msg = http.StatusBadRequest, "malformed request body"
	case errors.Is(err, context.Canceled):
		log.DebugContext(r.Context(), "httpform: request canceled", slog.String("path", r.URL.Path))
		return
	}
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "httpform: submit failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

// decodeError marks errors produced while decoding the body.
type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de decodeError
	return errors.As(err, &de)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

func lastOpt(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
