package langfields

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"gorm.io/gorm"
)

// BeforeFlushHook runs inside the flush transaction before anything is
// written. pending holds the entities added since the last flush. An error
// aborts the flush and rolls the transaction back.
type BeforeFlushHook func(tx *gorm.DB, pending []Entity) error

// Session is a unit of work over one *gorm.DB. It is not safe for
// concurrent use.
type Session struct {
	db    *gorm.DB
	reg   *Registry
	hooks []BeforeFlushHook

	pending []Entity
	tracked []Entity
	deleted []Entity
}

// NewSession returns a session with the auto-population hook registered.
func (r *Registry) NewSession(db *gorm.DB) *Session {
	s := &Session{db: db, reg: r}
	s.OnBeforeFlush(r.autoPopulate)
	return s
}

// OnBeforeFlush appends a hook. Hooks run in registration order.
func (s *Session) OnBeforeFlush(h BeforeFlushHook) { s.hooks = append(s.hooks, h) }

// autoPopulate gives every new entity of a registered type a translation
// row built from its declared struct fields, in its current language.
func (r *Registry) autoPopulate(_ *gorm.DB, pending []Entity) error {
	for _, e := range pending {
		m, err := r.MappingOf(e)
		if errors.Is(err, ErrNotRegistered) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := m.Populate(e); err != nil {
			return err
		}
	}
	return nil
}

// Add stages a new entity for insertion.
func (s *Session) Add(e Entity) { s.pending = append(s.pending, e) }

// Track adopts an entity that already exists in the database, so that
// writes to its translations are flushed.
func (s *Session) Track(e Entity) {
	for _, t := range s.tracked {
		if t == e {
			return
		}
	}
	s.tracked = append(s.tracked, e)
}

// Delete stages a persisted entity for deletion. Its translation and search
// rows go with it through the foreign keys.
func (s *Session) Delete(e Entity) { s.deleted = append(s.deleted, e) }

// Pending returns the entities staged for insertion.
func (s *Session) Pending() []Entity { return append([]Entity(nil), s.pending...) }

// Get loads the entity with primary key id into dest, loads its
// translations and tracks it. A missing row returns gorm.ErrRecordNotFound.
func (s *Session) Get(ctx context.Context, dest Entity, id any) error {
	m, err := s.reg.MappingOf(dest)
	if err != nil {
		return err
	}
	tx := s.db.WithContext(ctx)
	if err := tx.First(dest, id).Error; err != nil {
		return err
	}
	if err := m.Load(tx, dest); err != nil {
		return err
	}
	s.Track(dest)
	return nil
}

// Flush writes everything staged in one transaction: hooks run first, then
// new entities are inserted, translation and search rows of all entities are
// written and deletions are applied. On error nothing is committed and the
// entities are put back the way they were before the flush.
func (s *Session) Flush(ctx context.Context) error {
	pending := s.pending
	snap := s.snapshot(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, h := range s.hooks {
			if err := h(tx, pending); err != nil {
				return fmt.Errorf("langfields: before flush: %w", err)
			}
		}
		for _, e := range pending {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
			if err := s.persist(tx, e); err != nil {
				return err
			}
		}
		for _, e := range s.tracked {
			if err := s.persist(tx, e); err != nil {
				return err
			}
		}
		for _, e := range s.deleted {
			if err := tx.Delete(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		snap.restore(ctx)
		s.reg.logger.Warn("flush rolled back", slog.Any("error", err))
		return err
	}

	s.reg.logger.Debug("flushed",
		slog.Int("inserted", len(pending)),
		slog.Int("tracked", len(s.tracked)),
		slog.Int("deleted", len(s.deleted)),
	)
	s.tracked = append(s.tracked, pending...)
	s.pending = nil
	for _, e := range s.deleted {
		e.translatable().Translations = nil
		s.untrack(e)
	}
	s.deleted = nil
	return nil
}

func (s *Session) persist(tx *gorm.DB, e Entity) error {
	m, err := s.reg.MappingOf(e)
	if errors.Is(err, ErrNotRegistered) {
		return nil
	}
	if err != nil {
		return err
	}
	return m.persist(tx, e)
}

func (s *Session) untrack(e Entity) {
	out := s.tracked[:0]
	for _, t := range s.tracked {
		if t != e {
			out = append(out, t)
		}
	}
	s.tracked = out
}

type rowState struct {
	tr      *Translation
	id      int64
	dirty   bool
	search  *SearchRow
	sid     int64
	pending *Vector
}

type entityState struct {
	e    Entity
	rows []*Translation
	lang string
}

// flushSnapshot records what a failed flush has to undo in memory.
type flushSnapshot struct {
	reg      *Registry
	entities []entityState
	rows     []rowState
	inserted []Entity
}

func (s *Session) snapshot(ctx context.Context) *flushSnapshot {
	snap := &flushSnapshot{reg: s.reg}
	for _, e := range s.pending {
		if m, err := s.reg.MappingOf(e); err == nil {
			if _, set := m.primaryKey(s.db.WithContext(ctx), e); !set {
				snap.inserted = append(snap.inserted, e)
			}
		}
	}
	for _, group := range [][]Entity{s.pending, s.tracked} {
		for _, e := range group {
			t := e.translatable()
			snap.entities = append(snap.entities, entityState{
				e:    e,
				rows: append([]*Translation(nil), t.Translations...),
				lang: t.CurrentLanguage,
			})
			for _, tr := range t.Translations {
				st := rowState{tr: tr, id: tr.ID, dirty: tr.dirty, search: tr.Search}
				if tr.Search != nil {
					st.sid, st.pending = tr.Search.ID, tr.Search.pending
				}
				snap.rows = append(snap.rows, st)
			}
		}
	}
	return snap
}

func (snap *flushSnapshot) restore(ctx context.Context) {
	for _, st := range snap.rows {
		st.tr.ID, st.tr.dirty, st.tr.Search = st.id, st.dirty, st.search
		if st.search != nil {
			st.search.ID, st.search.pending = st.sid, st.pending
		}
	}
	for _, es := range snap.entities {
		t := es.e.translatable()
		t.Translations, t.CurrentLanguage = es.rows, es.lang
	}
	// new entities got their primary key from the rolled back insert
	for _, e := range snap.inserted {
		m, _ := snap.reg.MappingOf(e)
		pk := m.Base.PrioritizedPrimaryField
		rv := reflect.Indirect(reflect.ValueOf(e))
		_ = pk.Set(ctx, rv, reflect.Zero(pk.FieldType).Interface())
	}
}
