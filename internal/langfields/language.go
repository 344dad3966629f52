package langfields

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

var errEmptyTag = errors.New("empty tag")

// CanonicalLanguage validates a BCP 47 tag and returns its canonical form,
// so "EN", "en" and "en-us" compare the way users expect.
func CanonicalLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", &InvalidLanguageError{Tag: tag, Err: errEmptyTag}
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", &InvalidLanguageError{Tag: tag, Err: err}
	}
	return t.String(), nil
}

// LanguageOf returns the language reads of e resolve to.
func (m *Mapping) LanguageOf(e Entity) string {
	lang := e.translatable().CurrentLanguage
	if lang == "" {
		return m.defaultLang
	}
	if c, err := CanonicalLanguage(lang); err == nil {
		return c
	}
	return lang
}

// DefaultLanguage returns the language used when an entity names none.
func (m *Mapping) DefaultLanguage() string { return m.defaultLang }
