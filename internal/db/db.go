package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("db: unsupported dialect %q", d)
}

type DB struct {
	sql     *sql.DB
	dialect Dialect
}

func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	driver, err := dialect.driver()
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	if dialect == SQLite {
		// single writer
		sqlDB.SetMaxOpenConns(1)
	}

	d := New(sqlDB, dialect)
	if err := d.Ping(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return d, nil
}

// New wraps an already open handle.
func New(sqlDB *sql.DB, dialect Dialect) *DB {
	return &DB{sql: sqlDB, dialect: dialect}
}

func (d *DB) Dialect() Dialect { return d.dialect }

func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return d.sql.PingContext(ctx)
}

// Exec, QueryRow and Query take '?' placeholders and rewrite them for the dialect.
func (d *DB) Exec(ctx context.Context, query string, args ...any) error {
	_, err := d.sql.ExecContext(ctx, d.Rebind(query), args...)
	return err
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) Row {
	return d.sql.QueryRowContext(ctx, d.Rebind(query), args...)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return d.sql.QueryContext(ctx, d.Rebind(query), args...)
}

// Rebind turns '?' placeholders into $1, $2... for postgres.
func (d *DB) Rebind(query string) string {
	if d.dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Close() error
	Err() error
	Next() bool
	Scan(dest ...any) error
}

var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

func WrapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("db: %w", err)
}
