package main

import (
	"context"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/reoring/goform/standard"
)

// Signup is the validated payload of the demo signup form.
type Signup struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Age   int      `json:"age"`
	Tags  []string `json:"tags,omitempty"`
}

// Account is returned for accepted signups.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// signupSchema validates decoded JSON, YAML or form input. Numbers may
// arrive as float64 (JSON), int (YAML) or text (forms).
var signupSchema = standard.Func[Signup](func(_ context.Context, in any) standard.Result[Signup] {
	m, ok := in.(map[string]any)
	if !ok {
		return standard.Failure[Signup](standard.Issue{Message: "Expected object", Code: standard.CodeInvalidType})
	}
	var out Signup
	var iss standard.Issues
	root := standard.At()

	out.Email, _ = m["email"].(string)
	if out.Email == "" {
		iss = append(iss, coded(root.Field("email"), "Required", standard.CodeRequired))
	} else if _, err := mail.ParseAddress(out.Email); err != nil {
		iss = append(iss, coded(root.Field("email"), "Invalid email", standard.CodeInvalidFormat))
	}

	out.Name = strings.TrimSpace(str(m["name"]))
	switch {
	case out.Name == "":
		iss = append(iss, coded(root.Field("name"), "Required", standard.CodeRequired))
	case len(out.Name) > 64:
		iss = append(iss, coded(root.Field("name"), "Too long", standard.CodeTooLong))
	}

	age, ok := number(m["age"])
	switch {
	case !ok:
		iss = append(iss, coded(root.Field("age"), "Expected number", standard.CodeInvalidType))
	case age < 13:
		iss = append(iss, coded(root.Field("age"), "Too small", standard.CodeTooSmall))
	default:
		out.Age = age
	}

	if tags, ok := m["tags"].([]any); ok {
		for i, t := range tags {
			s, ok := t.(string)
			if !ok || s == "" {
				iss = append(iss, coded(root.Field("tags").Index(i), "Expected text", standard.CodeInvalidType))
				continue
			}
			out.Tags = append(out.Tags, s)
		}
	}

	if len(iss) > 0 {
		return standard.Failure[Signup](iss...)
	}
	return standard.Success(out)
})

func createAccount(_ context.Context, s Signup, _ ...any) (Account, error) {
	return Account{ID: uuid.NewString(), Email: s.Email}, nil
}

func coded(p standard.Path, msg, code string) standard.Issue {
	it := p.Issue(msg)
	it.Code = code
	return it
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func number(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		x, err := strconv.Atoi(n)
		return x, err == nil
	}
	return 0, false
}
