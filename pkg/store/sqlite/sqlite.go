// Package sqlite provides the default persistent store backend: a single
// SQLite file opened with WAL journaling through the pure-Go modernc driver,
// queried with sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/utc"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	store      TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	data       BLOB    NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER,
	PRIMARY KEY (store, key)
);
CREATE INDEX IF NOT EXISTS records_expires_at ON records (expires_at) WHERE expires_at IS NOT NULL;
`

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

// Option customises Open.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: NORMAL.
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates the parent directory of the database before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// Store is a SQLite backed store.Store.
type Store struct {
	db   *sqlx.DB
	path string
}

var _ store.Store = (*Store)(nil)

type row struct {
	Store     string        `db:"store"`
	Key       string        `db:"key"`
	Data      []byte        `db:"data"`
	CachedAt  int64         `db:"cached_at"`
	ExpiresAt sql.NullInt64 `db:"expires_at"`
}

func (r row) record() store.Record {
	rec := store.Record{
		Key:      r.Key,
		Data:     r.Data,
		CachedAt: utc.New(time.UnixMilli(r.CachedAt)),
	}
	if r.ExpiresAt.Valid {
		exp := utc.New(time.UnixMilli(r.ExpiresAt.Int64))
		rec.ExpiresAt = &exp
	}
	return rec
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{busyTimeout: 10_000, synchronous: "NORMAL"}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range append(pragmas, schema) {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("init", path, fmt.Errorf("%s: %w", p, err))
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("ping", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, name, key string) (*store.Record, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		SELECT store, key, data, cached_at, expires_at FROM records
		WHERE store = ? AND key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		name, key, time.Now().UnixMilli())
	if err == sql.ErrNoRows {
		return nil, store.NotFound(name, key)
	}
	if err != nil {
		return nil, errors.WrapResource("get", name, key, err)
	}
	rec := r.record()
	return &rec, nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, name, key string, value any, ttl time.Duration) error {
	rec, err := store.NewRecord(key, value, ttl)
	if err != nil {
		return err
	}
	r := row{
		Store:    name,
		Key:      key,
		Data:     rec.Data,
		CachedAt: rec.CachedAt.Time.UnixMilli(),
	}
	if rec.ExpiresAt != nil {
		r.ExpiresAt = sql.NullInt64{Int64: rec.ExpiresAt.Time.UnixMilli(), Valid: true}
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO records (store, key, data, cached_at, expires_at)
		VALUES (:store, :key, :data, :cached_at, :expires_at)
		ON CONFLICT (store, key) DO UPDATE SET
			data = excluded.data,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`, r)
	return errors.WrapResource("set", name, key, err)
}

// GetAll implements store.Store.
func (s *Store) GetAll(ctx context.Context, name string) ([]store.Record, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT store, key, data, cached_at, expires_at FROM records
		WHERE store = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY key`,
		name, time.Now().UnixMilli())
	if err != nil {
		return nil, errors.WrapResource("list", name, "", err)
	}
	recs := make([]store.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.record())
	}
	return recs, nil
}

// Remove implements store.Store.
func (s *Store) Remove(ctx context.Context, name, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE store = ? AND key = ?`, name, key)
	return errors.WrapResource("remove", name, key, err)
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE store = ?`, name)
	return errors.WrapResource("clear", name, "", err)
}

// Purge implements store.Store.
func (s *Store) Purge(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, errors.WrapResource("purge", "records", "", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
