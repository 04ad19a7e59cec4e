package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/standard"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := i18n.T(standard.CodeInvalidType, nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	if msg := i18n.T(standard.CodeInvalidType, nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	assert.Equal(t, "email: 必須です", i18n.T(standard.CodeRequired, map[string]string{"field": "email"}))
	assert.Equal(t, "no_such_code", i18n.T("no_such_code", nil))
}

func TestDictionary_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "too long", i18n.Dictionary("fr").Message("too_long", nil))
}

func TestLocalize_RewritesCodedIssues(t *testing.T) {
	issues := standard.Issues{
		{Message: "Expected number", Path: []standard.PathSegment{standard.Key("age")}, Code: standard.CodeInvalidType},
		{Message: "custom", Path: []standard.PathSegment{standard.Key("age")}},
		{Message: "keep me", Code: "vendor_specific"},
	}
	format := i18n.Localize(i18n.Dictionary("ja"), goform.Flatten)

	got := format(issues)
	assert.Equal(t, []string{"型が不正です", "custom"}, got.Nested["age"])
	assert.Equal(t, []string{"keep me"}, got.Root)
	// input is not mutated
	assert.Equal(t, "Expected number", issues[0].Message)
}

func TestLocalize_UsesProcessTranslatorWhenNil(t *testing.T) {
	format := i18n.Localize[standard.Issues](nil, standard.Identity)
	issues := standard.Issues{{Message: "x", Code: standard.CodeRequired}}

	assert.Equal(t, "required", format(issues)[0].Message)
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	assert.Equal(t, "必須です", format(issues)[0].Message)
}
