package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/app")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ru", cfg.DefaultLang)
	assert.Equal(t, []string{"ru", "en"}, cfg.Languages)
	assert.Equal(t, "simple", cfg.SearchConfig)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/app")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DEFAULT_LANG", "en")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestParseRequiresDatabase(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Parse()
	assert.Error(t, err)
}
