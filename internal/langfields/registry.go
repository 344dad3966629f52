package langfields

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"regexp"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var searchConfigRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Option configures a Registry.
type Option func(*Registry)

// WithNamer sets the naming strategy; pass db.NamingStrategy so derived
// names agree with the tables gorm creates.
func WithNamer(n schema.Namer) Option {
	return func(r *Registry) { r.namer = n }
}

// WithDefaultLanguage sets the language used by entities that name none.
func WithDefaultLanguage(lang string) Option {
	return func(r *Registry) { r.defaultLang = lang }
}

// WithSearchConfig sets the PostgreSQL text search configuration.
func WithSearchConfig(cfg string) Option {
	return func(r *Registry) { r.searchConfig = cfg }
}

// WithLogger sets the logger for migrations and flushes.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry derives and keeps the mappings of base entity types.
type Registry struct {
	mu       sync.Mutex
	cache    sync.Map
	mappings map[reflect.Type]*Mapping
	order    []*Mapping

	namer        schema.Namer
	defaultLang  string
	searchConfig string
	logger       *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		mappings:     make(map[reflect.Type]*Mapping),
		namer:        schema.NamingStrategy{},
		defaultLang:  DefaultLanguage,
		searchConfig: "simple",
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultLanguage returns the registry-wide default language.
func (r *Registry) DefaultLanguage() string { return r.defaultLang }

// Register derives the satellite tables of model, a pointer to or value of
// a struct embedding Translatable. Registering a type twice returns the
// mapping derived the first time.
func (r *Registry) Register(model any) (*Mapping, error) {
	t := indirectType(reflect.TypeOf(model))
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &SchemaError{Model: fmt.Sprintf("%T", model), Msg: "model must be a struct"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.mappings[t]; ok {
		return m, nil
	}
	if !reflect.PointerTo(t).Implements(reflect.TypeOf((*Entity)(nil)).Elem()) {
		return nil, &SchemaError{Model: t.Name(), Msg: "model must embed langfields.Translatable"}
	}
	if !searchConfigRe.MatchString(r.searchConfig) {
		return nil, &SchemaError{Model: t.Name(), Msg: "invalid search configuration " + r.searchConfig}
	}
	lang, err := CanonicalLanguage(r.defaultLang)
	if err != nil {
		return nil, err
	}

	base, err := schema.Parse(reflect.New(t).Interface(), &r.cache, r.namer)
	if err != nil {
		return nil, fmt.Errorf("langfields: parse %s: %w", t.Name(), err)
	}
	m, err := derive(base, r.namer)
	if err != nil {
		return nil, err
	}
	m.defaultLang = lang
	m.searchConfig = r.searchConfig

	r.mappings[t] = m
	r.order = append(r.order, m)
	r.logger.Debug("language mapping registered",
		slog.String("model", m.Model),
		slog.String("lang_table", m.LangTable.Name),
		slog.String("search_table", m.SearchTable.Name),
		slog.Int("fields", len(m.Fields)),
	)
	return m, nil
}

// MustRegister is Register for process start-up; it panics on error.
func (r *Registry) MustRegister(model any) *Mapping {
	m, err := r.Register(model)
	if err != nil {
		panic(err)
	}
	return m
}

// MappingOf returns the mapping of a registered model.
func (r *Registry) MappingOf(model any) (*Mapping, error) {
	t := indirectType(reflect.TypeOf(model))
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mappings[t]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNotRegistered, t)
}

// Mappings returns all mappings in registration order.
func (r *Registry) Mappings() []*Mapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Mapping(nil), r.order...)
}

// Migrate creates the satellite tables of every registered model. Base
// tables must exist already.
func (r *Registry) Migrate(ctx context.Context, db *gorm.DB) error {
	for _, m := range r.Mappings() {
		if err := applyDDL(ctx, db, r.logger, m.DDL()); err != nil {
			return fmt.Errorf("%s: %w", m.Model, err)
		}
		r.logger.Info("language tables ready",
			slog.String("model", m.Model),
			slog.String("lang_table", m.LangTable.Name),
			slog.String("search_table", m.SearchTable.Name),
		)
	}
	return nil
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
