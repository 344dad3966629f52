package langfields

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type article struct {
	ID     uint `gorm:"primaryKey"`
	Rating int
	Title  string  `gorm:"-" lang:"weight:A"`
	Body   *string `gorm:"-" lang:"weight:B"`
	Note   string  `gorm:"-" lang:""`
	Translatable
}

type tag struct {
	ID   string `gorm:"type:uuid;primaryKey"`
	Slug string
	Translatable
}

func newTestMapping(t *testing.T) (*Registry, *Mapping) {
	t.Helper()
	reg := NewRegistry()
	m, err := reg.Register(&article{})
	require.NoError(t, err)
	return reg, m
}

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }
