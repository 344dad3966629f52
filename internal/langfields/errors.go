package langfields

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTranslation is returned when an entity has no translation row for
	// the requested language.
	ErrNoTranslation = errors.New("langfields: no translation")

	// ErrNotRegistered is returned for models that were never passed to
	// Registry.Register.
	ErrNotRegistered = errors.New("langfields: model not registered")
)

// SchemaError reports a malformed model at registration time.
type SchemaError struct {
	Model string
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("langfields: %s: %s", e.Model, e.Msg)
	}
	return fmt.Sprintf("langfields: %s.%s: %s", e.Model, e.Field, e.Msg)
}

// InvalidFieldError is returned when a name is not a known field of the model.
type InvalidFieldError struct {
	Model string
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("langfields: %s has no field %q", e.Model, e.Field)
}

// InvalidLanguageError is returned for tags that are not valid BCP 47.
type InvalidLanguageError struct {
	Tag string
	Err error
}

func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("langfields: invalid language %q: %v", e.Tag, e.Err)
}

func (e *InvalidLanguageError) Unwrap() error { return e.Err }

// NoTranslationError carries the field and language of a failed resolution.
// It matches ErrNoTranslation with errors.Is.
type NoTranslationError struct {
	Field string
	Lang  string
}

func (e *NoTranslationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("langfields: no %q translation", e.Lang)
	}
	return fmt.Sprintf("langfields: no %q translation for %s", e.Lang, e.Field)
}

func (e *NoTranslationError) Is(target error) bool { return target == ErrNoTranslation }
