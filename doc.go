// Package goform provides:
//
// - Form: a submit-lifecycle coordinator (element validity, schema validation,
// submit callback, Submitting/Submitted/Errors state)
// - Parser: a reactive parser that re-validates its input whenever it changes
// - Flatten: the FlatErrors formatter grouping issues by dot path
//
// Schemas implement standard.Schema; reactive state is built on the reactive
// package.
//
// Design policy:
// - Keep only public APIs in the root package; the schema contract lives in
// standard/, the reactive substrate in reactive/, HTTP glue in httpform/.
// - Validation failures are state (Errors), never returned errors.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	input := reactive.NewRef[any](map[string]any{"email": ""})
//	form, err := goform.NewWithSchema(input, reactive.Static[standard.Schema[Signup]](signupSchema),
//		func(ctx context.Context, s Signup, _ ...any) (string, error) { return api.Create(ctx, s) },
//		goform.Options[goform.FlatErrors]{FormatErrors: goform.Flatten},
//	)
//	id, ok, err := form.Submit(ctx)
//	if !ok {
//		fmt.Println(form.Errors.Get().Field("email"))
//	}
//
//	p, err := goform.NewParser(input, reactive.Static[standard.Schema[Signup]](signupSchema),
//		goform.ParseOptions[goform.FlatErrors]{FormatErrors: goform.Flatten})
//	defer p.Stop()
package goform
