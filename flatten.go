package goform

import "github.com/reoring/goform/standard"

// FlatErrors groups issue messages into root-level messages and messages
// keyed by dot path (for example "items.2.price").
type FlatErrors struct {
	// Root holds the messages of issues without a renderable path.
	Root []string `json:"root,omitempty" yaml:"root,omitempty"`
	// Nested holds the messages of issues with a path, keyed by dot path.
	Nested map[string][]string `json:"nested,omitempty" yaml:"nested,omitempty"`
	// Fields lists the keys of Nested in the order they were first seen.
	Fields []string `json:"-" yaml:"-"`
}

// Flatten converts issues to FlatErrors. Messages keep their relative order
// within each bucket. An issue is classified as root when it has no path,
// when a path segment cannot be rendered or when its dot path is empty (see
// standard.DotPath); otherwise its full dot path is the bucket key.
//
// Flatten can be used directly as a formatter:
//
//	goform.Options[goform.FlatErrors]{FormatErrors: goform.Flatten}
func Flatten(issues standard.Issues) FlatErrors {
	var out FlatErrors
	for _, it := range issues {
		dot, ok := standard.DotPath(it)
		if !ok {
			out.Root = append(out.Root, it.Message)
			continue
		}
		if out.Nested == nil {
			out.Nested = map[string][]string{}
		}
		if _, seen := out.Nested[dot]; !seen {
			out.Fields = append(out.Fields, dot)
		}
		out.Nested[dot] = append(out.Nested[dot], it.Message)
	}
	return out
}

// IsEmpty reports whether there are no messages at all.
func (f FlatErrors) IsEmpty() bool { return len(f.Root) == 0 && len(f.Nested) == 0 }

// Field returns the messages recorded for a dot path.
func (f FlatErrors) Field(dot string) []string { return f.Nested[dot] }

// First returns the first message recorded for a dot path, or "".
func (f FlatErrors) First(dot string) string {
	if msgs := f.Nested[dot]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
