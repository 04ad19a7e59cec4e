package standard

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// PathSegment is one step of an issue path. Key is usually a string (object
// key) or an int (array index). Other numeric kinds render as numbers; any
// other type is allowed by the protocol but cannot be rendered as a path.
type PathSegment struct {
	Key any
}

// Key returns a segment addressing an object key.
func Key(name string) PathSegment { return PathSegment{Key: name} }

// Index returns a segment addressing an array element.
func Index(i int) PathSegment { return PathSegment{Key: i} }

// Path builds issue paths in a chain-safe way. The zero value is the root.
type Path struct {
	segs []PathSegment
}

// At starts a path from the given segments.
func At(segs ...PathSegment) Path {
	return Path{segs: append([]PathSegment(nil), segs...)}
}

// Field returns a copy of p extended by an object key.
func (p Path) Field(name string) Path {
	return Path{segs: append(append([]PathSegment{}, p.segs...), Key(name))}
}

// Index returns a copy of p extended by an array index.
func (p Path) Index(i int) Path {
	return Path{segs: append(append([]PathSegment{}, p.segs...), Index(i))}
}

// Segments returns the path segments; nil for the root.
func (p Path) Segments() []PathSegment {
	if len(p.segs) == 0 {
		return nil
	}
	return append([]PathSegment(nil), p.segs...)
}

// Issue creates an Issue at p.
func (p Path) Issue(msg string) Issue { return IssueAt(p, msg) }

// DotPath joins the issue path with "." (for example "items.2.price"). It
// reports false when the issue has no path, when a segment key is neither a
// string nor a number, or when the joined path is empty.
func DotPath(issue Issue) (string, bool) {
	return JoinDots(issue.Path)
}

// JoinDots renders segments as a dot path. A separator is only written once
// the path is non-empty, so leading "" keys vanish: ["", "a"] renders "a".
// See DotPath for when ok is false.
func JoinDots(segs []PathSegment) (string, bool) {
	b := &strings.Builder{}
	for _, s := range segs {
		k, ok := keyString(s.Key)
		if !ok {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k)
	}
	return b.String(), b.Len() > 0
}

// Pointer renders segments as a JSON Pointer (RFC 6901). The root is "/".
// Keys that cannot be rendered as text are written with %v formatting.
func Pointer(segs []PathSegment) string {
	if len(segs) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range segs {
		k, ok := keyString(s.Key)
		if !ok {
			k = fmt.Sprint(s.Key)
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(k, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

func keyString(k any) (string, bool) {
	switch v := k.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case nil:
		return "", false
	}
	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return formatNumber(rv.Float()), true
	}
	return "", false
}

// formatNumber renders f the way JavaScript prints numbers in property keys:
// integral values without a fraction, infinities as "Infinity".
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
