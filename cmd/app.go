package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/example/slotwatch/internal/booking"
	"github.com/example/slotwatch/internal/catalog"
	"github.com/example/slotwatch/internal/config"
	"github.com/example/slotwatch/internal/db"
	"github.com/example/slotwatch/internal/docstore"
	"github.com/example/slotwatch/internal/exitcode"
	"github.com/example/slotwatch/internal/migrate"
	"github.com/example/slotwatch/internal/snapshot"
)

// app is what every subcommand starts from: configuration, a logger and the
// document store.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	docs  docstore.Store
	db    *db.DB
	close func()

	// migrations applied while opening a SQL store
	migrated []string
}

// setup reads the configuration and opens the document store. Commands that
// reach the booking service or Mailjet pass needCredentials.
func setup(ctx context.Context, needCredentials bool) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, &exitcode.ConfigErr{Err: err}
	}
	if needCredentials {
		if err := cfg.RequireCredentials(); err != nil {
			return nil, &exitcode.ConfigErr{Err: err}
		}
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	a := &app{cfg: cfg, log: log, close: func() {}}
	if err := a.openStore(ctx); err != nil {
		return nil, &exitcode.ConfigErr{Err: err}
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreBackend {
	case docstore.BackendSQLite, docstore.BackendPostgres:
		dialect, dsn := db.SQLite, a.cfg.SQLitePath
		if a.cfg.StoreBackend == docstore.BackendPostgres {
			dialect, dsn = db.Postgres, a.cfg.DatabaseURL
		}
		if dialect == db.SQLite {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return err
			}
		}
		d, err := db.Open(ctx, dialect, dsn)
		if err != nil {
			return fmt.Errorf("open %s: %w", dialect, err)
		}
		applied, err := migrate.Up(ctx, d)
		if err != nil {
			d.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.db = d
		a.migrated = applied
		a.docs = docstore.NewSQLStore(d)
		a.close = func() { d.Close() }
	case docstore.BackendMinIO:
		s, err := docstore.NewMinIOStore(ctx, a.cfg.MinIO)
		if err != nil {
			return err
		}
		a.docs = s
	default:
		a.docs = docstore.NewFileStore(a.cfg.DataDir)
	}
	a.log.Debug("document store ready", "backend", a.cfg.StoreBackend)
	return nil
}

func (a *app) bookingClient() (*booking.Client, error) {
	tpl, err := booking.LoadTemplates(a.cfg.QueryDir)
	if err != nil {
		return nil, &exitcode.ConfigErr{Err: err}
	}
	return booking.New(a.cfg.BookingBaseURL, a.cfg.IdentityToken, tpl, nil), nil
}

func (a *app) catalog(bc *booking.Client) *catalog.Catalog {
	return catalog.New(bc, a.docs, a.log)
}

func (a *app) snapshots() *snapshot.Store {
	return snapshot.NewStore(a.docs)
}
