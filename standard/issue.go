package standard

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes understood by the built-in translations.
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
)

// Issue represents a single validation failure.
type Issue struct {
	Message string
	// Path locates the failure inside the input. Empty means the whole input.
	Path []PathSegment
	// Code is an optional machine-readable code (for example "invalid_type").
	// It is not part of the protocol; localization uses it when present.
	Code string
}

// Issues is a collection of validation issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. Expected number at /age
		fmt.Fprintf(b, "%s at %s", it.Message, Pointer(it.Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Messages returns the issue messages in order.
func (iss Issues) Messages() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Message)
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path.
func IssueAt(p Path, msg string) Issue {
	return Issue{Message: msg, Path: p.Segments()}
}

// Root creates an Issue without a path.
func Root(msg string) Issue {
	return Issue{Message: msg}
}
