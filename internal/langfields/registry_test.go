package langfields

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDerivesTables(t *testing.T) {
	_, m := newTestMapping(t)

	assert.Equal(t, "articles", m.BaseTable())
	assert.Equal(t, "articles_lang_fields", m.LangTable.Name)
	assert.Equal(t, []string{"id", "lang", "title", "body", "note", "articles_id"}, m.LangTable.ColumnNames())
	assert.Equal(t, "articles_search_fields", m.SearchTable.Name)
	assert.Equal(t, []string{"id", "search_vector", "articles_lang_fields_id"}, m.SearchTable.ColumnNames())

	fk := m.LangTable.Columns[len(m.LangTable.Columns)-1]
	require.NotNil(t, fk.References)
	assert.Equal(t, Reference{Table: "articles", Column: "id"}, *fk.References)
	assert.Equal(t, "bigint", fk.Type)

	require.Len(t, m.SearchTable.Indexes, 1)
	idx := m.SearchTable.Indexes[0]
	assert.Equal(t, "articles_search_fields_tsvector", idx.Name)
	assert.Equal(t, "gin", idx.Using)
	assert.Equal(t, []string{"search_vector"}, idx.Columns)
}

func TestRegisterFieldDeclarations(t *testing.T) {
	_, m := newTestMapping(t)

	require.Len(t, m.Fields, 3)
	assert.Equal(t, Field{Name: "Title", Column: "title", Type: "text", Weight: WeightA, index: []int{2}}, m.Fields[0])
	assert.Equal(t, WeightB, m.Fields[1].Weight)
	assert.False(t, m.Fields[2].Weighted())
	assert.Len(t, m.WeightedFields(), 2)

	f, ok := m.Field("note")
	require.True(t, ok)
	assert.Equal(t, "Note", f.Name)
	_, ok = m.Field("Rating")
	assert.False(t, ok)
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg, m := newTestMapping(t)

	again, err := reg.Register(article{})
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Len(t, reg.Mappings(), 1)

	got, err := reg.MappingOf(&article{})
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestRegisterWithoutLanguageFields(t *testing.T) {
	m, err := NewRegistry().Register(&tag{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "lang", "tags_id"}, m.LangTable.ColumnNames())
	assert.Equal(t, "uuid", m.LangTable.Columns[2].Type)
	assert.Empty(t, m.WeightedFields())
	assert.True(t, m.vectorFor(nil).Empty())
}

func TestMappingOfUnknownModel(t *testing.T) {
	_, err := NewRegistry().MappingOf(&article{})
	assert.True(t, errors.Is(err, ErrNotRegistered))
}

type noKey struct {
	Name string `gorm:"-" lang:""`
	Translatable
}

type badWeight struct {
	ID   uint
	Name string `gorm:"-" lang:"weight:Z"`
	Translatable
}

type notIgnored struct {
	ID   uint
	Name string `lang:""`
	Translatable
}

type migrationOnly struct {
	ID   uint
	Name string `gorm:"-:migration" lang:""`
	Translatable
}

type ignoredAll struct {
	ID   uint
	Name string `gorm:"-:all" lang:""`
	Translatable
}

type clashing struct {
	ID    uint
	Title string `gorm:"-" lang:""`
	Other string `gorm:"-" lang:"column:title"`
	Translatable
}

type reservedColumn struct {
	ID   uint
	Lang string `gorm:"-" lang:""`
	Translatable
}

type unsupported struct {
	ID   uint
	Tags []string `gorm:"-" lang:""`
	Translatable
}

type plain struct {
	ID   uint
	Name string
}

func TestRegisterRejectsMalformedModels(t *testing.T) {
	tests := []struct {
		name  string
		model any
		want  string
	}{
		{"no primary key", &noKey{}, "no primary key"},
		{"unknown weight", &badWeight{}, "unknown weight"},
		{"missing gorm ignore", &notIgnored{}, `gorm:"-"`},
		{"ignored for migration only", &migrationOnly{}, `gorm:"-"`},
		{"duplicate column", &clashing{}, "duplicates"},
		{"reserved column", &reservedColumn{}, "duplicates"},
		{"unsupported type", &unsupported{}, "unsupported type"},
		{"no mixin", &plain{}, "Translatable"},
		{"not a struct", new(int), "must be a struct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().Register(tt.model)
			require.Error(t, err)
			var se *SchemaError
			if errors.As(err, &se) {
				assert.Contains(t, se.Error(), tt.want)
				return
			}
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegisterAcceptsIgnoreAll(t *testing.T) {
	m, err := NewRegistry().Register(&ignoredAll{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "lang", "name", "ignored_alls_id"}, m.LangTable.ColumnNames())
}

func TestMustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() { NewRegistry().MustRegister(&plain{}) })
}

func TestRegisterRejectsBadSearchConfig(t *testing.T) {
	_, err := NewRegistry(WithSearchConfig("simple'; drop")).Register(&article{})
	assert.ErrorContains(t, err, "invalid search configuration")
}

func TestDDL(t *testing.T) {
	_, m := newTestMapping(t)
	ddl := m.DDL()
	require.Len(t, ddl, 4)

	assert.True(t, strings.HasPrefix(ddl[0], `create table if not exists "articles_lang_fields"`))
	assert.Contains(t, ddl[0], `"id" bigserial primary key`)
	assert.Contains(t, ddl[0], `"title" text`)
	assert.Contains(t, ddl[0], `"articles_id" bigint references "articles"("id") on delete cascade`)
	assert.Equal(t, `create index if not exists "articles_lang_fields_articles_id_idx" on "articles_lang_fields" ("articles_id")`, ddl[1])
	assert.Contains(t, ddl[2], `"search_vector" tsvector`)
	assert.Contains(t, ddl[2], `"articles_lang_fields_id" bigint references "articles_lang_fields"("id") on delete cascade`)
	assert.Equal(t, `create index if not exists "articles_search_fields_tsvector" on "articles_search_fields" using gin ("search_vector")`, ddl[3])
}
