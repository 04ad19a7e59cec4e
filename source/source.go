// Package source decodes submitted payloads (JSON, YAML, url-encoded and
// multipart forms) into plain any trees usable as schema input: objects
// become map[string]any, arrays []any.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// NumberMode dictates how JSON numbers are represented.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // float64 (with potential precision loss).
	NumberJSONNumber                   // json.Number, kept as text.
)

// Opt bundles decoding options.
type Opt struct {
	NumberMode NumberMode
	// MaxBytes caps the request body read by FromRequest. Zero means
	// DefaultMaxBytes.
	MaxBytes int64
}

// DefaultMaxBytes is the body limit applied by FromRequest when Opt.MaxBytes
// is zero.
const DefaultMaxBytes = 1 << 20

var (
	// ErrUnsupportedMediaType is returned by FromRequest for content types it
	// cannot decode.
	ErrUnsupportedMediaType = errors.New("source: unsupported media type")
	// ErrTooLarge is returned by FromRequest when the body exceeds the limit.
	ErrTooLarge = errors.New("source: payload too large")
)

// JSON decodes a single JSON document from r.
func JSON(r io.Reader, opts ...Opt) (any, error) {
	opt := lastOpt(opts)
	dec := j.NewDecoder(r)
	if opt.NumberMode == NumberJSONNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return v, nil
}

// JSONBytes decodes a JSON document held in b.
func JSONBytes(b []byte, opts ...Opt) (any, error) { return JSON(bytes.NewReader(b), opts...) }

// YAML decodes a single YAML document from r. Mappings with non-string keys
// are converted to map[string]any using their textual form. An empty
// document decodes to nil.
func YAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	return normalizeYAML(v), nil
}

// Values converts url-encoded form values. Single values become strings;
// repeated keys, or keys ending in "[]", become []any of strings.
func Values(vals url.Values) map[string]any {
	out := make(map[string]any, len(vals))
	for k, vs := range vals {
		if name, ok := strings.CutSuffix(k, "[]"); ok {
			out[name] = toAnySlice(vs)
			continue
		}
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		out[k] = toAnySlice(vs)
	}
	return out
}

// FromRequest decodes the request body according to its Content-Type.
// JSON is the default when the header is missing.
func FromRequest(r *http.Request, opts ...Opt) (any, error) {
	opt := lastOpt(opts)
	limit := opt.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	mt := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, ct)
		}
		mt = parsed
	}

	switch mt {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, limit)
		if err := r.ParseForm(); err != nil {
			return nil, bodyErr(err)
		}
		return Values(r.PostForm), nil
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			return nil, bodyErr(err)
		}
		return Values(r.MultipartForm.Value), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("source: read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, ErrTooLarge
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return JSONBytes(body, opt)
	case mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml" || strings.HasSuffix(mt, "+yaml"):
		return YAML(bytes.NewReader(body))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
}

func bodyErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return ErrTooLarge
	}
	return fmt.Errorf("source: parse form: %w", err)
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = normalizeYAML(x)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[fmt.Sprint(k)] = normalizeYAML(x)
		}
		return m
	case []any:
		for i, x := range t {
			t[i] = normalizeYAML(x)
		}
		return t
	}
	return v
}

func toAnySlice(vs []string) []any {
	out := make([]any, len(vs))
	for i, s := range vs {
		out[i] = s
	}
	return out
}

func lastOpt(opts []Opt) Opt {
	var opt Opt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
