package goform

import (
	"errors"
	"reflect"
)

var (
	// ErrFormatterRequired is returned by constructors when the error type
	// cannot hold raw standard.Issues and no FormatErrors was supplied.
	ErrFormatterRequired = errors.New("goform: FormatErrors is required for this error type")

	// ErrInputType is returned by Submit when no schema is in effect and the
	// raw input is not assignable to the submit callback's value type.
	ErrInputType = errors.New("goform: input is not assignable to the submit value type")

	// ErrNilSchema is reported by Parser when the schema source resolves to nil.
	ErrNilSchema = errors.New("goform: schema is nil")

	// ErrPendingValidation is reported by Parser when a schema returns a
	// pending validation; Parser only supports synchronous schemas.
	ErrPendingValidation = errors.New("goform: synchronous validation required, but schema returned a pending result")
)

// emptier lets error shapes decide what "no errors" means.
type emptier interface {
	IsEmpty() bool
}

// isEmptyErrors reports whether an errors value counts as "no errors": nil,
// a zero-length slice/map/string, an IsEmpty() == true value, or a zero
// struct.
func isEmptyErrors(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return true
		}
	case reflect.Slice, reflect.Map, reflect.String:
		return rv.Len() == 0
	}
	if e, ok := v.(emptier); ok {
		return e.IsEmpty()
	}
	return rv.IsZero()
}
