package catalog

import "langsearch/internal/langfields"

// Products is the language mapping of Product. Set by Register.
var Products *langfields.Mapping

// Models lists the base models for AutoMigrate.
func Models() []any {
	return []any{&Product{}}
}

// Register maps every catalog model onto reg.
func Register(reg *langfields.Registry) error {
	m, err := reg.Register(&Product{})
	if err != nil {
		return err
	}
	Products = m
	return nil
}
