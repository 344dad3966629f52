package langfields

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// vectorSeparator joins weighted parts of a search vector.
const vectorSeparator = " || ' ' || "

// Term is one weighted piece of text in a search vector.
type Term struct {
	Text   string
	Weight Weight
}

// Vector is a search vector yet to be computed by PostgreSQL: every term is
// converted with to_tsvector, weighted with setweight and concatenated in order.
type Vector struct {
	Config string
	Terms  []Term
}

// Empty reports whether the vector has no terms; it is then stored as NULL.
func (v Vector) Empty() bool { return len(v.Terms) == 0 }

// SQL returns the expression with one placeholder per term.
func (v Vector) SQL() string {
	if v.Empty() {
		return "NULL"
	}
	parts := make([]string, len(v.Terms))
	for i, t := range v.Terms {
		parts[i] = fmt.Sprintf("setweight(to_tsvector('%s', ?), '%s')", v.Config, t.Weight)
	}
	return strings.Join(parts, vectorSeparator)
}

// Expr returns the vector as a gorm expression usable as a column value.
func (v Vector) Expr() clause.Expr {
	vars := make([]any, len(v.Terms))
	for i, t := range v.Terms {
		vars[i] = t.Text
	}
	return clause.Expr{SQL: v.SQL(), Vars: vars}
}

// vectorFor builds the vector of a translation row from its values.
func (m *Mapping) vectorFor(values map[string]any) Vector {
	v := Vector{Config: m.searchConfig}
	for _, f := range m.Fields {
		if !f.Weighted() {
			continue
		}
		v.Terms = append(v.Terms, Term{Text: textOf(values[f.Column]), Weight: f.Weight})
	}
	return v
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
