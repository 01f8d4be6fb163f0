package repository

import (
	"context"
	"embed"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrate creates the ledger tables and, when seed is set, the reference rows:
// both sheet items, the known locations and a zeroed inventory row per pair.
// Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB, seed bool) error {
	files := []string{"sql/schema.sql"}
	if seed {
		files = append(files, "sql/seed.sql")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer tx.Rollback()

	for _, name := range files {
		raw, err := sqlFiles.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		for _, stmt := range splitStatements(string(raw)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "%s: %.60s", name, stmt)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "commit migration")
}

func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
