package tokenstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	"github.com/Gilberthb/Umunsi-sub002/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite stores the token in a local SQLite key/value table.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn, key string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := database.RegisterDBMetrics(prometheus.DefaultRegisterer, db, "token-store"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register db metrics: %w", err)
	}
	return NewSQLite(db, key), nil
}

// NewSQLite wraps an already migrated database.
func NewSQLite(db *sql.DB, key string) *SQLite {
	return &SQLite{db: db, key: key}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

const (
	loadStmt  = `SELECT value FROM kv WHERE key = ?`
	saveStmt  = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	clearStmt = `DELETE FROM kv WHERE key = ?`
)

func (s *SQLite) Load(ctx context.Context) (value string, err error) {
	ctx, end := database.TraceQuery(ctx, "LoadToken", loadStmt)
	defer func() { end(err) }()

	err = s.db.QueryRowContext(ctx, loadStmt, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load kv[%s]: %w", s.key, err)
	}
	return value, nil
}

func (s *SQLite) Save(ctx context.Context, token string) (err error) {
	ctx, end := database.TraceQuery(ctx, "SaveToken", saveStmt)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, saveStmt, s.key, token); err != nil {
		return fmt.Errorf("save kv[%s]: %w", s.key, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) (err error) {
	ctx, end := database.TraceQuery(ctx, "ClearToken", clearStmt)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, clearStmt, s.key); err != nil {
		return fmt.Errorf("clear kv[%s]: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
