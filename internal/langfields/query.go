package langfields

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LangKey is the FilterBy key that overrides the query language.
const LangKey = "lang"

// langSetting carries the language a scope was filtered in to Find.
const langSetting = "langfields:lang"

// Query filters base entities by plain and language-variant fields in one
// language.
type Query struct {
	m    *Mapping
	db   *gorm.DB
	lang string
}

// Query returns a query bound to lang; an empty lang means the default.
func (m *Mapping) Query(db *gorm.DB, lang string) *Query {
	if lang == "" {
		lang = m.defaultLang
	} else if c, err := CanonicalLanguage(lang); err == nil {
		lang = c
	}
	return &Query{m: m, db: db, lang: lang}
}

// Language returns the language the query is bound to.
func (q *Query) Language() string { return q.lang }

// LanguageOf returns the language Find sets on the results of db: the
// FilterBy "lang" override when there was one, else the bound language.
func (q *Query) LanguageOf(db *gorm.DB) string {
	if v, ok := db.Get(langSetting); ok {
		if lang, ok := v.(string); ok && lang != "" {
			return lang
		}
	}
	return q.lang
}

func (q *Query) model() *gorm.DB {
	return q.db.Model(reflect.New(q.m.modelType).Interface())
}

// FilterBy applies equality filters. Keys naming language-variant fields
// match the translation in the query language; other keys are base columns
// (Go field or column name). The "lang" key switches the language, for the
// filter and for the entities Find returns.
func (q *Query) FilterBy(filters map[string]any) (*gorm.DB, error) {
	lang := q.lang
	explicitLang := false
	if v, ok := filters[LangKey]; ok {
		c, err := CanonicalLanguage(textOf(v))
		if err != nil {
			return nil, err
		}
		lang, explicitLang = c, true
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		if k != LangKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	db := q.model().Set(langSetting, lang)
	var variant []clause.Expression
	for _, k := range keys {
		if f, ok := q.m.Field(k); ok {
			variant = append(variant, clause.Eq{
				Column: clause.Column{Table: q.m.LangTable.Name, Name: f.Column},
				Value:  filters[k],
			})
			continue
		}
		sf := q.m.Base.LookUpField(k)
		if sf == nil || sf.DBName == "" {
			return nil, &InvalidFieldError{Model: q.m.Model, Field: k}
		}
		db = db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: sf.DBName},
			Value:  filters[k],
		})
	}

	if len(variant) > 0 || explicitLang {
		db = db.Where("EXISTS (?)", q.translationExists(lang, variant...))
	}
	return db, nil
}

// Filter passes criteria straight to gorm's Where on the base table.
func (q *Query) Filter(query any, args ...any) *gorm.DB {
	return q.model().Set(langSetting, q.lang).Where(query, args...)
}

// Search matches entities whose translation in the query language matches
// text, using plainto_tsquery against the search vector.
func (q *Query) Search(text string) *gorm.DB {
	m := q.m
	match := clause.Expr{
		SQL: fmt.Sprintf("EXISTS (SELECT 1 FROM ? WHERE ? = ? AND ? @@ plainto_tsquery('%s', ?))", m.searchConfig),
		Vars: []any{
			clause.Table{Name: m.SearchTable.Name},
			clause.Column{Table: m.SearchTable.Name, Name: m.LangFK},
			clause.Column{Table: m.LangTable.Name, Name: idColumn},
			clause.Column{Table: m.SearchTable.Name, Name: vectorColumn},
			text,
		},
	}
	return q.model().Set(langSetting, q.lang).Where("EXISTS (?)", q.translationExists(q.lang, match))
}

// translationExists builds the correlated sub-query selecting translation
// rows of the outer base row in lang.
func (q *Query) translationExists(lang string, conds ...clause.Expression) *gorm.DB {
	m := q.m
	sub := q.db.Session(&gorm.Session{NewDB: true}).
		Table(m.LangTable.Name).
		Select("1").
		Where(clause.Expr{
			SQL: "? = ?",
			Vars: []any{
				clause.Column{Table: m.LangTable.Name, Name: m.BaseFK},
				clause.Column{Table: m.BaseTable(), Name: m.PrimaryKey()},
			},
		}).
		Where(clause.Eq{Column: clause.Column{Table: m.LangTable.Name, Name: langColumn}, Value: lang})
	for _, c := range conds {
		sub = sub.Where(c)
	}
	return sub
}

// Find runs db (typically from FilterBy or Search) into dest, a pointer to a
// slice of entities or entity pointers, loads their translations and sets
// their current language to LanguageOf(db).
func (q *Query) Find(ctx context.Context, db *gorm.DB, dest any) error {
	lang := q.LanguageOf(db)
	tx := db.WithContext(ctx)
	if err := tx.Order(clause.OrderByColumn{
		Column: clause.Column{Table: clause.CurrentTable, Name: q.m.PrimaryKey()},
	}).Find(dest).Error; err != nil {
		return err
	}
	entities, err := entitiesOf(dest)
	if err != nil {
		return err
	}
	for _, e := range entities {
		e.translatable().CurrentLanguage = lang
	}
	return q.m.Load(tx, entities...)
}

// entitiesOf flattens a pointer to []T or []*T into entities.
func entitiesOf(dest any) ([]Entity, error) {
	rv := reflect.Indirect(reflect.ValueOf(dest))
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("langfields: destination must be a pointer to a slice, got %T", dest)
	}
	out := make([]Entity, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.Kind() != reflect.Pointer {
			item = item.Addr()
		}
		e, ok := item.Interface().(Entity)
		if !ok {
			return nil, fmt.Errorf("langfields: %s does not embed Translatable", item.Type())
		}
		out = append(out, e)
	}
	return out, nil
}
