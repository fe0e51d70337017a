package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const createTrackingTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Migration is one schema file and whether it has run.
type Migration struct {
	Version string
	Applied bool
}

// Files returns the *.sql names in fsys in apply order.
func Files(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Status reports every migration in fsys and whether it has been applied.
func Status(ctx context.Context, db *sql.DB, fsys fs.FS) ([]Migration, error) {
	if _, err := db.ExecContext(ctx, createTrackingTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	names, err := Files(fsys)
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(names))
	for _, n := range names {
		out = append(out, Migration{Version: n, Applied: applied[n]})
	}
	return out, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions it ran. It stops at the first failure.
func Up(ctx context.Context, db *sql.DB, fsys fs.FS) ([]string, error) {
	pending, err := Status(ctx, db, fsys)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range pending {
		if m.Applied {
			continue
		}
		body, err := fs.ReadFile(fsys, m.Version)
		if err != nil {
			return ran, fmt.Errorf("read %s: %w", m.Version, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			continue
		}
		if err := apply(ctx, db, m.Version, string(body)); err != nil {
			return ran, err
		}
		ran = append(ran, m.Version)
	}
	return ran, nil
}

func apply(ctx context.Context, db *sql.DB, version, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("apply %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record %s: %w", version, err)
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
