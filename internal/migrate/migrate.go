package migrate

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/slotwatch/internal/db"
)

//go:embed *.sql
var fs embed.FS

// Up applies every embedded migration not yet recorded in schema_migrations
// and returns the versions it applied.
func Up(ctx context.Context, d *db.DB) ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []string
	for _, f := range files {
		var n int
		if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, f).Scan(&n); err != nil {
			return applied, err
		}
		if n > 0 {
			continue
		}

		b, err := fs.ReadFile(f)
		if err != nil {
			return applied, err
		}
		if err := d.Exec(ctx, string(b)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}
		if err := d.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, f); err != nil {
			return applied, err
		}
		slog.Info("migration applied", "version", f, "dialect", d.Dialect())
		applied = append(applied, f)
	}

	return applied, nil
}
