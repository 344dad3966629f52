package langfields

import (
	"reflect"
	"sort"
)

// Write creates or updates the entity's translation in lang and makes lang
// the entity's current language. Keys of values are Go field names or
// column names; an unknown key fails the whole call with *InvalidFieldError
// before anything changes.
//
// The search vector of the row is recomputed from all of its values, for new
// and updated rows alike. Nothing is persisted until the session flushes.
func (m *Mapping) Write(e Entity, lang string, values map[string]any) error {
	if err := m.owns(e); err != nil {
		return err
	}
	lang, err := CanonicalLanguage(lang)
	if err != nil {
		return err
	}
	cols, err := m.columnValues(values)
	if err != nil {
		return err
	}
	m.upsert(e, lang, cols)
	return nil
}

// Populate writes the entity's declared struct fields as its translation in
// the current language. It is what the flush hook runs for new entities.
// A new row takes every field; a row that already exists for the language
// only takes the fields that are set, so values written earlier survive.
func (m *Mapping) Populate(e Entity) (*Translation, error) {
	if err := m.owns(e); err != nil {
		return nil, err
	}
	lang, err := CanonicalLanguage(m.LanguageOf(e))
	if err != nil {
		return nil, err
	}
	_, exists := e.translatable().Translation(lang)

	rv := reflect.Indirect(reflect.ValueOf(e))
	cols := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		if exists && f.isZero(rv) {
			continue
		}
		cols[f.Column] = f.valueOf(rv)
	}
	return m.upsert(e, lang, cols), nil
}

// columnValues validates keys and rekeys values by column.
func (m *Mapping) columnValues(values map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make(map[string]any, len(values))
	for _, k := range keys {
		f, ok := m.Field(k)
		if !ok {
			return nil, &InvalidFieldError{Model: m.Model, Field: k}
		}
		cols[f.Column] = values[k]
	}
	return cols, nil
}

func (m *Mapping) upsert(e Entity, lang string, cols map[string]any) *Translation {
	t := e.translatable()
	t.CurrentLanguage = lang

	if tr, ok := t.Translation(lang); ok {
		for c, v := range cols {
			tr.Values[c] = v
		}
		if tr.Persisted() {
			tr.dirty = true
		}
		m.restage(tr)
		return tr
	}

	tr := &Translation{Lang: lang, Values: make(map[string]any, len(m.Fields))}
	for _, f := range m.Fields {
		tr.Values[f.Column] = cols[f.Column]
	}
	m.restage(tr)
	t.Translations = append(t.Translations, tr)
	return tr
}

// restage schedules the row's search vector to be recomputed.
func (m *Mapping) restage(tr *Translation) {
	v := m.vectorFor(tr.Values)
	if tr.Search == nil {
		tr.Search = &SearchRow{}
	}
	tr.Search.pending = &v
}
