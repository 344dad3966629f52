package database

import (
	"context"
	"log"
	"log/slog"
	"time"

	"langsearch/config"
	"langsearch/internal/domain/catalog"
	"langsearch/internal/langfields"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB    *gorm.DB
	Langs *langfields.Registry
)

func InitDB(cfg config.Config, lg *slog.Logger) {
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		Logger: gormLogger(lg, cfg.SlogLevel()),
	})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}
	DB = db

	Langs = langfields.NewRegistry(
		langfields.WithDefaultLanguage(cfg.DefaultLang),
		langfields.WithSearchConfig(cfg.SearchConfig),
		langfields.WithLogger(lg),
	)
	if err := catalog.Register(Langs); err != nil {
		log.Fatal("❌ Language mapping error:", err)
	}

	if !cfg.AutoMigrate {
		lg.Info("database connected", slog.Bool("migrated", false))
		return
	}
	if err := Migrate(context.Background(), DB, Langs); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}
	lg.Info("database connected", slog.Bool("migrated", true))
}

// Migrate creates the base tables, then the translation and search tables
// derived from them.
func Migrate(ctx context.Context, db *gorm.DB, reg *langfields.Registry) error {
	if err := db.WithContext(ctx).AutoMigrate(catalog.Models()...); err != nil {
		return err
	}
	return reg.Migrate(ctx, db)
}

// gormLogger routes gorm's log output through slog.
func gormLogger(lg *slog.Logger, level slog.Level) logger.Interface {
	gormLevel := logger.Warn
	switch {
	case level <= slog.LevelDebug:
		gormLevel = logger.Info
	case level >= slog.LevelError:
		gormLevel = logger.Error
	}
	return logger.New(slog.NewLogLogger(lg.Handler(), slog.LevelInfo), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
	})
}
