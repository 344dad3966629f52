package langfields

import (
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
)

// owns checks that e is an instance of the mapped model.
func (m *Mapping) owns(e Entity) error {
	if t := indirectType(reflect.TypeOf(e)); t != m.modelType {
		return fmt.Errorf("%w: %v is not %s", ErrNotRegistered, t, m.Model)
	}
	return nil
}

// primaryKey reads the base primary key of e.
func (m *Mapping) primaryKey(tx *gorm.DB, e Entity) (any, bool) {
	v, zero := m.Base.PrioritizedPrimaryField.ValueOf(tx.Statement.Context, reflect.Indirect(reflect.ValueOf(e)))
	return v, !zero
}

// keyString renders a primary key the way PostgreSQL casts it to text, so
// the owning side and the fk column agree for uuid keys too.
func keyString(v any) string { return strings.ToLower(fmt.Sprint(v)) }

// ownerKey aliases the fk column cast to text in Load.
const ownerKey = "langfields_owner_key"

type searchRecord struct {
	ID           int64
	OwnerID      int64
	SearchVector *string
}

// Load replaces the translation rows of the given entities with the rows
// stored in the database, search rows included. Entities without a primary
// key are skipped.
func (m *Mapping) Load(tx *gorm.DB, entities ...Entity) error {
	byKey := make(map[string]*Translatable, len(entities))
	ids := make([]any, 0, len(entities))
	for _, e := range entities {
		if err := m.owns(e); err != nil {
			return err
		}
		id, ok := m.primaryKey(tx, e)
		if !ok {
			continue
		}
		t := e.translatable()
		t.Translations = nil
		byKey[keyString(id)] = t
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []map[string]any
	err := tx.Raw(fmt.Sprintf("SELECT *, %s::text AS %s FROM %s WHERE %s IN ? ORDER BY %s",
		tx.Statement.Quote(m.BaseFK), ownerKey, tx.Statement.Quote(m.LangTable.Name),
		tx.Statement.Quote(m.BaseFK), tx.Statement.Quote(idColumn)), ids).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("langfields: load %s: %w", m.LangTable.Name, err)
	}

	byID := make(map[int64]*Translation, len(rows))
	langIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		t, ok := byKey[keyString(textOf(row[ownerKey]))]
		if !ok {
			continue
		}
		tr := &Translation{
			ID:     toInt64(row[idColumn]),
			Lang:   textOf(row[langColumn]),
			Values: make(map[string]any, len(m.Fields)),
		}
		for _, f := range m.Fields {
			tr.Values[f.Column] = row[f.Column]
		}
		t.Translations = append(t.Translations, tr)
		byID[tr.ID] = tr
		langIDs = append(langIDs, tr.ID)
	}
	if len(langIDs) == 0 {
		return nil
	}

	var records []searchRecord
	err = tx.Raw(fmt.Sprintf("SELECT %s, %s AS owner_id, %s::text AS search_vector FROM %s WHERE %s IN ?",
		tx.Statement.Quote(idColumn), tx.Statement.Quote(m.LangFK), tx.Statement.Quote(vectorColumn),
		tx.Statement.Quote(m.SearchTable.Name), tx.Statement.Quote(m.LangFK)), langIDs).
		Scan(&records).Error
	if err != nil {
		return fmt.Errorf("langfields: load %s: %w", m.SearchTable.Name, err)
	}
	for _, rec := range records {
		tr, ok := byID[rec.OwnerID]
		if !ok {
			continue
		}
		s := &SearchRow{ID: rec.ID}
		if rec.SearchVector != nil {
			s.Vector = *rec.SearchVector
		}
		tr.Search = s
	}
	return nil
}

// persist inserts new rows and updates changed ones for a saved entity.
func (m *Mapping) persist(tx *gorm.DB, e Entity) error {
	id, ok := m.primaryKey(tx, e)
	if !ok {
		return fmt.Errorf("langfields: %s has no primary key value", m.Model)
	}
	for _, tr := range e.translatable().Translations {
		if err := m.persistRow(tx, id, tr); err != nil {
			return err
		}
		if err := m.persistSearch(tx, tr); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapping) persistRow(tx *gorm.DB, baseID any, tr *Translation) error {
	if !tr.Persisted() {
		cols := []string{tx.Statement.Quote(langColumn)}
		vals := []any{tr.Lang}
		for _, f := range m.Fields {
			cols = append(cols, tx.Statement.Quote(f.Column))
			vals = append(vals, tr.Values[f.Column])
		}
		cols = append(cols, tx.Statement.Quote(m.BaseFK))
		vals = append(vals, baseID)

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			tx.Statement.Quote(m.LangTable.Name), strings.Join(cols, ", "),
			placeholders(len(vals)), tx.Statement.Quote(idColumn))
		if err := tx.Raw(stmt, vals...).Scan(&tr.ID).Error; err != nil {
			return fmt.Errorf("langfields: insert %s: %w", m.LangTable.Name, err)
		}
		tr.dirty = false
		return nil
	}
	if !tr.dirty {
		return nil
	}
	updates := make(map[string]any, len(m.Fields)+1)
	updates[langColumn] = tr.Lang
	for _, f := range m.Fields {
		updates[f.Column] = tr.Values[f.Column]
	}
	err := tx.Table(m.LangTable.Name).Where(idColumn+" = ?", tr.ID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("langfields: update %s: %w", m.LangTable.Name, err)
	}
	tr.dirty = false
	return nil
}

func (m *Mapping) persistSearch(tx *gorm.DB, tr *Translation) error {
	s := tr.Search
	if s == nil {
		s = &SearchRow{}
		tr.Search = s
		m.restage(tr)
	}
	if s.pending == nil {
		return nil
	}
	vec := vectorValue(*s.pending)

	if s.ID == 0 {
		stmt := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) RETURNING %s",
			tx.Statement.Quote(m.SearchTable.Name), tx.Statement.Quote(vectorColumn),
			tx.Statement.Quote(m.LangFK), tx.Statement.Quote(idColumn))
		if err := tx.Raw(stmt, vec, tr.ID).Scan(&s.ID).Error; err != nil {
			return fmt.Errorf("langfields: insert %s: %w", m.SearchTable.Name, err)
		}
	} else {
		err := tx.Table(m.SearchTable.Name).Where(idColumn+" = ?", s.ID).Update(vectorColumn, vec).Error
		if err != nil {
			return fmt.Errorf("langfields: update %s: %w", m.SearchTable.Name, err)
		}
	}
	s.pending = nil
	return nil
}

// vectorValue returns the value bound for a search vector column.
func vectorValue(v Vector) any {
	if v.Empty() {
		return nil
	}
	return v.Expr()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	default:
		return 0
	}
}
