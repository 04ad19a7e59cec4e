package goform_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/reoring/goform"
	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/standard"
)

func TestSubmit_SuccessPassesValidatedValue(t *testing.T) {
	ctx := context.Background()
	s := reactive.NewScheduler()
	input := reactive.NewRef[any](map[string]any{"age": 30})

	var gotValue map[string]any
	var gotArgs []any
	form, err := goform.NewWithSchema(input, staticSchema[map[string]any](ageSchema),
		func(_ context.Context, v map[string]any, args ...any) (string, error) {
			gotValue, gotArgs = v, args
			return "saved", nil
		},
		goform.Options[goform.FlatErrors]{FormatErrors: goform.Flatten},
	)
	require.NoError(t, err)
	submitting, stop := recordBools(s, form.Submitting)
	defer stop()

	res, ok, err := form.Submit(ctx, "extra", 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "saved", res)
	assert.Equal(t, map[string]any{"age": 30}, gotValue)
	assert.Equal(t, []any{"extra", 7}, gotArgs)
	assert.True(t, form.Submitted.Get())
	assert.True(t, form.Errors.Get().IsEmpty())
	assert.Equal(t, []bool{false, true, false}, submitting())
}

func TestSubmit_ValidationShortCircuits(t *testing.T) {
	ctx := context.Background()
	calls := 0
	var reported []goform.FlatErrors
	form, err := goform.NewWithSchema(
		reactive.Static[any](map[string]any{"age": ""}),
		staticSchema[map[string]any](ageSchema),
		func(context.Context, map[string]any, ...any) (int, error) {
			calls++
			return 1, nil
		},
		goform.Options[goform.FlatErrors]{
			FormatErrors: goform.Flatten,
			OnErrors: func(_ context.Context, errs goform.FlatErrors) error {
				reported = append(reported, errs)
				return nil
			},
		},
	)
	require.NoError(t, err)

	res, ok, err := form.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, res)
	assert.Zero(t, calls)
	assert.False(t, form.Submitted.Get())
	assert.False(t, form.Submitting.Get())
	assert.Equal(t, []string{"Expected number"}, form.Errors.Get().Field("age"))
	require.Len(t, reported, 1)
	assert.Equal(t, form.Errors.Get(), reported[0])
}

func TestSubmit_DefaultFormatterKeepsRawIssues(t *testing.T) {
	form, err := goform.NewWithSchema[map[string]any, int, standard.Issues](
		reactive.Static[any](map[string]any{}),
		staticSchema[map[string]any](ageSchema),
		nil,
	)
	require.NoError(t, err)

	_, ok, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, form.Errors.Get(), 1)
	assert.Equal(t, "Expected number", form.Errors.Get()[0].Message)
}

func TestSubmit_OnErrorsFailureIsReturned(t *testing.T) {
	boom := errors.New("notify failed")
	form, err := goform.NewWithSchema[map[string]any, int, standard.Issues](
		reactive.Static[any](map[string]any{}),
		staticSchema[map[string]any](ageSchema),
		nil,
		goform.Options[standard.Issues]{
			OnErrors: func(context.Context, standard.Issues) error { return boom },
		},
	)
	require.NoError(t, err)

	_, ok, err := form.Submit(context.Background())
	assert.False(t, ok)
	require.ErrorIs(t, err, boom)
}

func TestSubmit_ReentrantCallIsDropped(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	form := goform.Use(func(context.Context, ...any) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(entered)
		<-release
		return 1, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, ok, err := form.Submit(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, res)
	}()
	<-entered

	res, ok, err := form.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, res)
	assert.True(t, form.Submitting.Get())

	close(release)
	<-done
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.False(t, form.Submitting.Get())
	assert.True(t, form.Submitted.Get())
}

func TestSubmit_CallbackErrorResetsSubmitting(t *testing.T) {
	s := reactive.NewScheduler()
	boom := errors.New("server down")
	form := goform.Use(func(context.Context, ...any) (int, error) { return 0, boom })
	submitting, stop := recordBools(s, form.Submitting)
	defer stop()

	_, ok, err := form.Submit(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, ok)
	assert.False(t, form.Submitted.Get())
	assert.Equal(t, []bool{false, true, false}, submitting())
}

func TestSubmit_CallbackPanicResetsSubmitting(t *testing.T) {
	form := goform.Use(func(context.Context, ...any) (int, error) { panic("kaboom") })

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _, _ = form.Submit(context.Background())
	})
	assert.False(t, form.Submitting.Get())

	// the form stays usable: the next submit reaches the callback again
	assert.PanicsWithValue(t, "kaboom", func() {
		_, _, _ = form.Submit(context.Background())
	})
	assert.False(t, form.Submitting.Get())
}

func TestSubmit_InvalidElementReportsAndStops(t *testing.T) {
	s := reactive.NewScheduler()
	el := &fakeElement{valid: false}
	calls := 0
	form, err := goform.New(func(context.Context, ...any) (int, error) {
		calls++
		return 0, nil
	}, goform.Options[standard.Issues]{Element: reactive.NewRef[goform.Element](el)})
	require.NoError(t, err)
	submitting, stop := recordBools(s, form.Submitting)
	defer stop()

	_, ok, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)
	assert.Equal(t, 1, el.reported)
	assert.Empty(t, form.Errors.Get())
	assert.Equal(t, []bool{false}, submitting())

	el.valid = true
	_, ok, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestSubmit_CallbackReportedErrors(t *testing.T) {
	var form *goform.Form[string, goform.FlatErrors]
	var reported int
	form, err := goform.New(func(context.Context, ...any) (string, error) {
		form.Errors.Set(goform.Flatten(standard.Issues{
			standard.IssueAt(standard.At(standard.Key("email")), "already taken"),
		}))
		return "partial", nil
	}, goform.Options[goform.FlatErrors]{
		FormatErrors: goform.Flatten,
		OnErrors: func(_ context.Context, errs goform.FlatErrors) error {
			reported++
			assert.Equal(t, "already taken", errs.First("email"))
			return nil
		},
	})
	require.NoError(t, err)

	res, ok, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "partial", res)
	assert.Equal(t, 1, reported)
	assert.False(t, form.Submitted.Get())

	// the next cycle starts from a clean slate
	form.Errors.Set(goform.FlatErrors{Root: []string{"stale"}})
	form.Submitted.Set(true)
	_, _, _ = form.Submit(context.Background())
	assert.Equal(t, 2, reported)
}

func TestSubmit_NoInputPassesOnlyArgs(t *testing.T) {
	var got []any
	form := goform.Use(func(_ context.Context, args ...any) (int, error) {
		got = args
		return len(args), nil
	})
	res, ok, err := form.Submit(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, res)
	assert.Equal(t, []any{"a", "b"}, got)

	empty := goform.Use[int](nil)
	_, ok, err = empty.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, empty.Submitted.Get())
}

func TestSubmit_NoSchemaNoInputPassesZeroValue(t *testing.T) {
	var gotValue profile
	var gotArgs []any
	form, err := goform.NewWithSchema[profile, int, standard.Issues](nil, nil,
		func(_ context.Context, p profile, args ...any) (int, error) {
			gotValue, gotArgs = p, args
			return len(args), nil
		})
	require.NoError(t, err)

	res, ok, err := form.Submit(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, res)
	assert.Equal(t, profile{}, gotValue)
	assert.Equal(t, []any{"x"}, gotArgs)
}

type profile struct {
	Name string
}

func TestSubmit_InputWithoutSchemaUsesCurrentValue(t *testing.T) {
	input := reactive.NewRef(profile{Name: "ann"})
	var got []profile
	form, err := goform.NewWithInput[profile, bool, standard.Issues](input,
		func(_ context.Context, p profile, _ ...any) (bool, error) {
			got = append(got, p)
			return true, nil
		})
	require.NoError(t, err)

	_, _, err = form.Submit(context.Background())
	require.NoError(t, err)
	input.Set(profile{Name: "bob"})
	_, _, err = form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []profile{{Name: "ann"}, {Name: "bob"}}, got)
}

func TestSubmit_SchemaSourceResolvedPerSubmit(t *testing.T) {
	schema := reactive.NewRef[standard.Schema[map[string]any]](nil)
	input := reactive.NewRef[any](map[string]any{"age": "x"})
	var got map[string]any
	form, err := goform.NewWithSchema[map[string]any, int, standard.Issues](input, schema,
		func(_ context.Context, v map[string]any, _ ...any) (int, error) {
			got = v
			return 0, nil
		})
	require.NoError(t, err)

	// no schema: raw input passes through
	_, ok, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"age": "x"}, got)

	schema.Set(ageSchema)
	_, ok, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	schema.Set(nil)
	input.Set("not a map")
	_, ok, err = form.Submit(context.Background())
	require.ErrorIs(t, err, goform.ErrInputType)
	assert.False(t, ok)
	assert.False(t, form.Submitting.Get())
}

func TestSubmit_AwaitsAsyncSchema(t *testing.T) {
	async := standard.AsyncFunc[int](func(ctx context.Context, input any) (standard.Result[int], error) {
		time.Sleep(5 * time.Millisecond)
		n, _ := input.(int)
		if n < 0 {
			return standard.Failure[int](standard.Root("negative")), nil
		}
		return standard.Success(n * 2), nil
	})
	input := reactive.NewRef[any](21)
	form, err := goform.NewWithSchema(input, staticSchema[int](async),
		func(_ context.Context, v int, _ ...any) (int, error) { return v, nil },
		goform.Options[goform.FlatErrors]{FormatErrors: goform.Flatten},
	)
	require.NoError(t, err)

	res, ok, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, res)

	input.Set(-1)
	_, ok, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"negative"}, form.Errors.Get().Root)
}

func TestSubmit_SchemaErrorPropagates(t *testing.T) {
	broken := errors.New("schema backend down")
	schema := standard.AsyncFunc[int](func(context.Context, any) (standard.Result[int], error) {
		return standard.Result[int]{}, broken
	})
	form, err := goform.NewWithSchema[int, int, standard.Issues](nil, staticSchema[int](schema), nil)
	require.NoError(t, err)

	_, ok, err := form.Submit(context.Background())
	require.ErrorIs(t, err, broken)
	assert.False(t, ok)
	assert.False(t, form.Submitting.Get())
	assert.Empty(t, form.Errors.Get())
}

func TestSubmit_SharedSubmittingAcrossForms(t *testing.T) {
	shared := reactive.NewRef(false)
	entered := make(chan struct{})
	release := make(chan struct{})

	a, err := goform.New(func(context.Context, ...any) (int, error) {
		close(entered)
		<-release
		return 1, nil
	}, goform.Options[standard.Issues]{Submitting: shared})
	require.NoError(t, err)
	bCalls := 0
	b, err := goform.New(func(context.Context, ...any) (int, error) {
		bCalls++
		return 2, nil
	}, goform.Options[standard.Issues]{Submitting: shared})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = a.Submit(context.Background())
	}()
	<-entered

	_, ok, err := b.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, bCalls)

	close(release)
	<-done
	_, ok, err = b.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, bCalls)
}

func TestReset_DiscardsInFlightOutcome(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	onErrors := 0
	var form *goform.Form[int, standard.Issues]
	form, err := goform.New(func(context.Context, ...any) (int, error) {
		close(entered)
		<-release
		form.Errors.Set(standard.Issues{standard.Root("late failure")})
		return 1, nil
	}, goform.Options[standard.Issues]{
		OnErrors: func(context.Context, standard.Issues) error {
			onErrors++
			return nil
		},
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, ok, err := form.Submit(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, res)
	}()
	<-entered
	form.Reset()
	close(release)
	<-done

	assert.Zero(t, onErrors)
	assert.False(t, form.Submitted.Get())
	assert.False(t, form.Submitting.Get())
}

func TestSubmit_CanceledContextSkipsCallback(t *testing.T) {
	calls := 0
	form := goform.Use(func(context.Context, ...any) (int, error) {
		calls++
		return 0, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := form.Submit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Zero(t, calls)
	assert.False(t, form.Submitting.Get())
}

func TestNew_RequiresFormatterForCustomErrorType(t *testing.T) {
	_, err := goform.New[int, goform.FlatErrors](nil)
	require.ErrorIs(t, err, goform.ErrFormatterRequired)

	_, err = goform.New[int, any](nil)
	require.NoError(t, err)

	_, err = goform.NewParser[int, map[string]string](nil, nil)
	require.ErrorIs(t, err, goform.ErrFormatterRequired)
}

func TestSubmit_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	form, err := goform.NewWithSchema[map[string]any, int, standard.Issues](
		reactive.Static[any](map[string]any{"age": ""}),
		staticSchema[map[string]any](ageSchema),
		nil,
		goform.Options[standard.Issues]{Tracer: tp.Tracer("test")},
	)
	require.NoError(t, err)
	_, _, err = form.Submit(context.Background())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "goform.submit", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("goform.outcome", "invalid"))
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}
