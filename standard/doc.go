// Package standard defines the validation-schema contract consumed by goform.
//
// A schema is anything implementing Schema[T]. Validate returns a Validation,
// which is either settled immediately (Done, Fail) or pending (Async):
//
//	res, err := schema.Validate(ctx, input).Wait(ctx)
//	if err != nil {
//		// genuine failure raised by the schema
//	}
//	if res.Failed() {
//		for _, it := range res.Issues {
//			dot, _ := standard.DotPath(it)
//			fmt.Println(dot, it.Message)
//		}
//	}
//
// Issues carry a message and an optional path of segments. Paths render as dot
// paths (grouping keys) or JSON Pointers (wire payloads).
package standard
