package langfields

import (
	"reflect"
	"sort"
)

// DefaultLanguage is used when neither the entity nor the registry names one.
const DefaultLanguage = "ru"

var translatableType = reflect.TypeOf(Translatable{})

// Entity is a base entity that embeds Translatable.
type Entity interface {
	translatable() *Translatable
}

// Translatable is embedded into base entities. It holds the language reads
// resolve to and the translation rows loaded for the instance.
type Translatable struct {
	CurrentLanguage string         `gorm:"-" json:"-"`
	Translations    []*Translation `gorm:"-" json:"-"`
}

func (t *Translatable) translatable() *Translatable { return t }

// SetLanguage changes the language reads resolve to. It does not touch rows.
func (t *Translatable) SetLanguage(lang string) { t.CurrentLanguage = lang }

// Language returns the language set on the instance, possibly empty.
func (t *Translatable) Language() string { return t.CurrentLanguage }

// Translation returns the row for lang, if loaded.
func (t *Translatable) Translation(lang string) (*Translation, bool) {
	for _, tr := range t.Translations {
		if tr.Lang == lang {
			return tr, true
		}
	}
	return nil, false
}

// Languages lists the languages with a loaded row, sorted.
func (t *Translatable) Languages() []string {
	out := make([]string, 0, len(t.Translations))
	for _, tr := range t.Translations {
		out = append(out, tr.Lang)
	}
	sort.Strings(out)
	return out
}

// Translation is one row of a <table>_lang_fields table.
type Translation struct {
	ID     int64
	Lang   string
	Values map[string]any // keyed by column name
	Search *SearchRow

	dirty bool
}

// Value returns the stored value of a column.
func (tr *Translation) Value(column string) any { return tr.Values[column] }

// Persisted reports whether the row has been inserted.
func (tr *Translation) Persisted() bool { return tr.ID != 0 }

// SearchRow is the <table>_search_fields row owned by a Translation.
type SearchRow struct {
	ID int64
	// Vector is the tsvector text as stored in the database. It is empty
	// until the row has been loaded back.
	Vector string

	pending *Vector
}

// Pending returns the vector that the next flush will store, if any.
func (s *SearchRow) Pending() (Vector, bool) {
	if s.pending == nil {
		return Vector{}, false
	}
	return *s.pending, true
}
