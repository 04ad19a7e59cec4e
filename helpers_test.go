package goform_test

import (
	"context"
	"maps"
	"sync"

	"github.com/reoring/goform/reactive"
	"github.com/reoring/goform/standard"
)

// ageSchema requires a numeric "age" field and echoes the object back.
var ageSchema = standard.Func[map[string]any](func(_ context.Context, input any) standard.Result[map[string]any] {
	m, ok := input.(map[string]any)
	if !ok {
		return standard.Failure[map[string]any](standard.Root("Expected object"))
	}
	switch m["age"].(type) {
	case int, float64:
		return standard.Success(maps.Clone(m))
	}
	return standard.Failure[map[string]any](standard.IssueAt(standard.At(standard.Key("age")), "Expected number"))
})

func staticSchema[T any](s standard.Schema[T]) reactive.Source[standard.Schema[T]] {
	return reactive.Static(s)
}

// fakeElement records validity reports.
type fakeElement struct {
	mu       sync.Mutex
	valid    bool
	reported int
}

func (e *fakeElement) CheckValidity() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.valid
}

func (e *fakeElement) ReportValidity() {
	e.mu.Lock()
	e.reported++
	e.mu.Unlock()
}

// recordBools records every value an effect observes on r.
func recordBools(s *reactive.Scheduler, r *reactive.Ref[bool]) (func() []bool, func()) {
	var mu sync.Mutex
	var seen []bool
	e := reactive.WatchEffect(func(tr *reactive.Tracker) {
		v := r.Read(tr)
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	}, reactive.WithScheduler(s))
	return func() []bool {
		mu.Lock()
		defer mu.Unlock()
		return append([]bool(nil), seen...)
	}, e.Stop
}
