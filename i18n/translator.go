package i18n

import (
	"sync"

	"github.com/reoring/goform/standard"
)

// Translator retrieves localized messages for issue codes.
// data provides optional metadata to embed in the message (for example,
// "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		standard.CodeInvalidType:   "invalid type",
		standard.CodeRequired:      "required",
		standard.CodeTooShort:      "too short",
		standard.CodeTooLong:       "too long",
		standard.CodeTooSmall:      "too small",
		standard.CodeTooBig:        "too big",
		standard.CodeInvalidFormat: "invalid format",
		standard.CodeInvalidEnum:   "not an allowed value",
		standard.CodeUnknownKey:    "unknown field",
	},
	"ja": {
		standard.CodeInvalidType:   "型が不正です",
		standard.CodeRequired:      "必須です",
		standard.CodeTooShort:      "短すぎます",
		standard.CodeTooLong:       "長すぎます",
		standard.CodeTooSmall:      "小さすぎます",
		standard.CodeTooBig:        "大きすぎます",
		standard.CodeInvalidFormat: "形式が不正です",
		standard.CodeInvalidEnum:   "許可されていない値です",
		standard.CodeUnknownKey:    "未知の項目です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if f := data["field"]; f != "" {
		return f + ": " + msg
	}
	return msg
}

// Dictionary returns the built-in Translator for lang ("en" or "ja"; anything
// else falls back to "en").
func Dictionary(lang string) Translator {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the process-wide Translator to the built-in
// dictionary for lang.
func SetLanguage(lang string) { SetTranslator(Dictionary(lang)) }

// SetTranslator replaces the process-wide Translator (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

func current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current().Message(code, data) }

// Localize returns a formatter that rewrites the Message of every issue
// carrying a Code, then hands the issues to next. A nil tr uses the
// process-wide Translator at formatting time. Issues without a Code and codes
// unknown to the translator keep their message.
func Localize[E any](tr Translator, next standard.Formatter[E]) standard.Formatter[E] {
	return func(issues standard.Issues) E {
		t := tr
		if t == nil {
			t = current()
		}
		out := make(standard.Issues, len(issues))
		for i, it := range issues {
			out[i] = it
			if it.Code == "" {
				continue
			}
			if msg := t.Message(it.Code, nil); msg != "" && msg != it.Code {
				out[i].Message = msg
			}
		}
		return next(out)
	}
}
