// Package driver opens the store backend selected by configuration.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/store/memory"
	"github.com/agentstation/watchsync/pkg/store/redis"
	"github.com/agentstation/watchsync/pkg/store/sqlite"
)

// Supported drivers.
const (
	SQLite = "sqlite"
	Memory = "memory"
	Redis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver string       `mapstructure:"driver" yaml:"driver"`
	Path   string       `mapstructure:"path" yaml:"path"` // sqlite database file
	Redis  redis.Config `mapstructure:"redis" yaml:"redis"`
}

// DefaultPath returns ~/.watchsync/watchsync.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "watchsync.db"
	}
	return filepath.Join(home, ".watchsync", "watchsync.db")
}

// Open opens the configured backend. An empty driver selects sqlite.
func Open(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Driver {
	case "", SQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultPath()
		}
		return sqlite.Open(path, sqlite.WithMkdirAll())
	case Memory:
		return memory.New(0), nil
	case Redis:
		return redis.New(ctx, cfg.Redis)
	}
	return nil, errors.NewConfigError("store", fmt.Sprintf("unknown driver %q (want sqlite, memory or redis)", cfg.Driver), nil)
}
