package langfields

import (
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

const (
	idColumn     = "id"
	langColumn   = "lang"
	vectorColumn = "search_vector"
)

// Column is a column of a derived table.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
	References *Reference
}

// Reference is a foreign key target. Deleting the target deletes the row.
type Reference struct {
	Table  string
	Column string
}

// Index is a secondary index of a derived table.
type Index struct {
	Name    string
	Using   string // empty means the default (btree)
	Columns []string
}

// Table is a derived table definition.
type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

// ColumnNames lists the table's columns in order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Mapping is the result of deriving the satellite tables of one base entity.
type Mapping struct {
	Model  string
	Base   *schema.Schema
	Fields []Field

	// LangTable holds one row per (entity, language).
	LangTable Table
	// SearchTable holds the search vector of each LangTable row.
	SearchTable Table

	// BaseFK is the LangTable column pointing at the base table.
	BaseFK string
	// LangFK is the SearchTable column pointing at LangTable.
	LangFK string

	modelType    reflect.Type
	defaultLang  string
	searchConfig string
}

// BaseTable returns the base entity's table name.
func (m *Mapping) BaseTable() string { return m.Base.Table }

// PrimaryKey returns the base table's primary key column.
func (m *Mapping) PrimaryKey() string { return m.Base.PrioritizedPrimaryField.DBName }

// Field finds a declaration by Go field name or column name.
func (m *Mapping) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name || f.Column == name {
			return f, true
		}
	}
	return Field{}, false
}

// WeightedFields returns the declarations that feed the search vector.
func (m *Mapping) WeightedFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Weighted() {
			out = append(out, f)
		}
	}
	return out
}

// derive builds the mapping for a parsed base schema.
func derive(base *schema.Schema, namer schema.Namer) (*Mapping, error) {
	model := base.ModelType.Name()
	pk := base.PrioritizedPrimaryField
	if pk == nil || pk.DBName == "" {
		return nil, &SchemaError{Model: model, Msg: "base table has no primary key"}
	}

	fields, err := scanFields(model, base.ModelType, namer, nil)
	if err != nil {
		return nil, err
	}

	pkType := pk.TagSettings["TYPE"]
	if pkType == "" {
		t, ok := sqlType(pk.FieldType)
		if !ok {
			return nil, &SchemaError{Model: model, Field: pk.Name, Msg: "unsupported primary key type " + pk.FieldType.String()}
		}
		pkType = t
	}

	m := &Mapping{
		Model:     model,
		Base:      base,
		Fields:    fields,
		modelType: base.ModelType,
	}

	langName := base.Table + "_lang_fields"
	m.BaseFK = base.Table + "_id"

	seen := map[string]struct{}{idColumn: {}, langColumn: {}, m.BaseFK: {}}
	cols := []Column{
		{Name: idColumn, Type: "bigserial", PrimaryKey: true},
		{Name: langColumn, Type: "text"},
	}
	for _, f := range fields {
		key := strings.ToLower(f.Column)
		if _, dup := seen[key]; dup {
			return nil, &SchemaError{Model: model, Field: f.Name, Msg: "column " + f.Column + " duplicates another column"}
		}
		seen[key] = struct{}{}
		cols = append(cols, Column{Name: f.Column, Type: f.Type})
	}
	cols = append(cols, Column{
		Name:       m.BaseFK,
		Type:       fkType(pkType),
		References: &Reference{Table: base.Table, Column: pk.DBName},
	})
	m.LangTable = Table{
		Name:    langName,
		Columns: cols,
		Indexes: []Index{{Name: langName + "_" + m.BaseFK + "_idx", Columns: []string{m.BaseFK}}},
	}

	searchName := base.Table + "_search_fields"
	m.LangFK = langName + "_id"
	m.SearchTable = Table{
		Name: searchName,
		Columns: []Column{
			{Name: idColumn, Type: "bigserial", PrimaryKey: true},
			{Name: vectorColumn, Type: "tsvector"},
			{Name: m.LangFK, Type: "bigint", References: &Reference{Table: langName, Column: idColumn}},
		},
		Indexes: []Index{{Name: searchName + "_tsvector", Using: "gin", Columns: []string{vectorColumn}}},
	}
	return m, nil
}

// fkType turns serial key types into their plain integer counterparts.
func fkType(t string) string {
	switch strings.ToLower(t) {
	case "serial":
		return "integer"
	case "bigserial":
		return "bigint"
	case "smallserial":
		return "smallint"
	}
	return t
}
