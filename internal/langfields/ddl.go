package langfields

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes for objects that already exist.
const (
	pgDuplicateTable  = "42P07"
	pgDuplicateObject = "42710"
)

func sqlIdent(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

// CreateSQL renders the table and its indexes as idempotent statements.
func (t Table) CreateSQL() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def := sqlIdent(c.Name) + " " + c.Type
		if c.PrimaryKey {
			def += " primary key"
		}
		if c.References != nil {
			def += fmt.Sprintf(" references %s(%s) on delete cascade",
				sqlIdent(c.References.Table), sqlIdent(c.References.Column))
		}
		cols = append(cols, def)
	}

	stmts := []string{
		fmt.Sprintf("create table if not exists %s (\n  %s\n)", sqlIdent(t.Name), strings.Join(cols, ",\n  ")),
	}
	for _, idx := range t.Indexes {
		quoted := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			quoted[i] = sqlIdent(c)
		}
		using := ""
		if idx.Using != "" {
			using = " using " + idx.Using
		}
		stmts = append(stmts, fmt.Sprintf("create index if not exists %s on %s%s (%s)",
			sqlIdent(idx.Name), sqlIdent(t.Name), using, strings.Join(quoted, ", ")))
	}
	return stmts
}

// DDL returns the statements creating both satellite tables, translations first.
func (m *Mapping) DDL() []string {
	return append(m.LangTable.CreateSQL(), m.SearchTable.CreateSQL()...)
}

// applyDDL runs statements in order. Objects that already exist are skipped.
func applyDDL(ctx context.Context, db *gorm.DB, logger *slog.Logger, stmts []string) error {
	for _, stmt := range stmts {
		err := db.WithContext(ctx).Exec(stmt).Error
		if err == nil {
			continue
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgDuplicateTable || pgErr.Code == pgDuplicateObject) {
			logger.Info("ddl skipped, object exists",
				slog.String("code", pgErr.Code),
				slog.String("message", pgErr.Message),
			)
			continue
		}
		return fmt.Errorf("langfields: apply ddl: %w", err)
	}
	return nil
}
