// Package redis provides a shared store backend on Redis. Records are stored
// as JSON strings and expire through native key TTLs.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"` // key namespace, default "watchsync"
}

// Addr returns host:port.
func (c Config) Addr() string {
	host, port := c.Host, c.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Store is a Redis backed store.Store.
type Store struct {
	rdb    *redis.Client
	prefix string
	logger *zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.StoreTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.NewConfigError("redis", fmt.Sprintf("failed to connect to Redis at %s", cfg.Addr()), err)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("Connected to Redis")

	return NewWithClient(rdb, cfg.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "watchsync"
	}
	return &Store{rdb: rdb, prefix: prefix, logger: logging.Default()}
}

func (s *Store) key(name, key string) string {
	return s.prefix + ":" + name + ":" + key
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, name, key string) (*store.Record, error) {
	raw, err := s.rdb.Get(ctx, s.key(name, key)).Bytes()
	if err == redis.Nil {
		return nil, store.NotFound(name, key)
	}
	if err != nil {
		return nil, errors.WrapResource("get", name, key, err)
	}
	var rec store.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.WrapParse("json", key, err)
	}
	if rec.Expired(time.Now()) {
		return nil, store.NotFound(name, key)
	}
	return &rec, nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, name, key string, value any, ttl time.Duration) error {
	rec, err := store.NewRecord(key, value, ttl)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapParse("json", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return errors.WrapResource("set", name, key, s.rdb.Set(ctx, s.key(name, key), raw, ttl).Err())
}

// keys scans every key of a store.
func (s *Store) keys(ctx context.Context, name string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.key(name, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// GetAll implements store.Store.
func (s *Store) GetAll(ctx context.Context, name string) ([]store.Record, error) {
	keys, err := s.keys(ctx, name)
	if err != nil {
		return nil, errors.WrapResource("list", name, "", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.WrapResource("list", name, "", err)
	}

	now := time.Now()
	recs := make([]store.Record, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // expired between SCAN and MGET
		}
		var rec store.Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			s.logger.Warn().Err(err).Str("key", keys[i]).Msg("Skipping undecodable record")
			continue
		}
		if !rec.Expired(now) {
			recs = append(recs, rec)
		}
	}
	store.SortRecords(recs)
	return recs, nil
}

// Remove implements store.Store.
func (s *Store) Remove(ctx context.Context, name, key string) error {
	return errors.WrapResource("remove", name, key, s.rdb.Del(ctx, s.key(name, key)).Err())
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, name string) error {
	keys, err := s.keys(ctx, name)
	if err != nil {
		return errors.WrapResource("clear", name, "", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.WrapResource("clear", name, "", s.rdb.Del(ctx, keys...).Err())
}

// Purge implements store.Store. Redis expires keys natively.
func (s *Store) Purge(context.Context) (int, error) {
	return 0, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.rdb.Close()
}
