package i18n

import (
	"sort"
	"sync"

	"golang.org/x/text/language"
)

var (
	matcherOnce sync.Once
	matcher     language.Matcher
	matchTags   []string
)

// Languages returns the languages of the built-in dictionaries, sorted with
// "en" first.
func Languages() []string {
	langs := make([]string, 0, len(dictionaries))
	for l := range dictionaries {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i] == "en" || langs[j] == "en" {
			return langs[i] == "en"
		}
		return langs[i] < langs[j]
	})
	return langs
}

// Negotiate picks the built-in dictionary best matching an Accept-Language
// header value. Unparseable or unmatched headers yield "en".
func Negotiate(acceptLanguage string) (lang string, tr Translator) {
	matcherOnce.Do(func() {
		matchTags = Languages()
		tags := make([]language.Tag, len(matchTags))
		for i, l := range matchTags {
			tags[i] = language.Make(l)
		}
		matcher = language.NewMatcher(tags)
	})
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	lang = matchTags[idx]
	return lang, Dictionary(lang)
}
