package langfields

import "reflect"

// Resolve returns the value of a language-variant field in the entity's
// current language.
func (m *Mapping) Resolve(e Entity, field string) (any, error) {
	return m.ResolveIn(e, field, m.LanguageOf(e))
}

// ResolveIn returns the value of a language-variant field in lang. It fails
// with *InvalidFieldError for undeclared fields and with ErrNoTranslation
// when no row for lang is loaded.
func (m *Mapping) ResolveIn(e Entity, field, lang string) (any, error) {
	if err := m.owns(e); err != nil {
		return nil, err
	}
	f, ok := m.Field(field)
	if !ok {
		return nil, &InvalidFieldError{Model: m.Model, Field: field}
	}
	if c, err := CanonicalLanguage(lang); err == nil {
		lang = c
	}
	tr, ok := e.translatable().Translation(lang)
	if !ok {
		return nil, &NoTranslationError{Field: f.Name, Lang: lang}
	}
	return tr.Values[f.Column], nil
}

// ResolveString is Resolve for text fields; nil values read as "".
func (m *Mapping) ResolveString(e Entity, field string) (string, error) {
	v, err := m.Resolve(e, field)
	if err != nil {
		return "", err
	}
	return textOf(v), nil
}

// Localize copies the current-language values into the entity's declared
// struct fields, so plain field reads observe the translation.
func (m *Mapping) Localize(e Entity) error {
	if err := m.owns(e); err != nil {
		return err
	}
	lang := m.LanguageOf(e)
	tr, ok := e.translatable().Translation(lang)
	if !ok {
		return &NoTranslationError{Lang: lang}
	}
	rv := reflect.Indirect(reflect.ValueOf(e))
	for _, f := range m.Fields {
		f.setOn(rv, tr.Values[f.Column])
	}
	return nil
}
