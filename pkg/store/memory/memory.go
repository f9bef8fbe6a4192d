// Package memory provides an in-process store backend on top of
// patrickmn/go-cache. Nothing survives a restart; it is used for dry runs,
// tests and as the response cache when no persistent backend is configured.
package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/store"
)

const sep = "\x00"

// Store is a go-cache backed store.Store.
type Store struct {
	cache *gocache.Cache
}

var _ store.Store = (*Store)(nil)

// New creates a memory store. Expired items are purged every cleanupInterval;
// a non-positive interval uses the package default.
func New(cleanupInterval time.Duration) *Store {
	if cleanupInterval <= 0 {
		cleanupInterval = constants.CacheCleanupInterval
	}
	return &Store{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func itemKey(name, key string) string {
	return name + sep + key
}

// Get implements store.Store.
func (s *Store) Get(_ context.Context, name, key string) (*store.Record, error) {
	v, ok := s.cache.Get(itemKey(name, key))
	if !ok {
		return nil, store.NotFound(name, key)
	}
	rec := v.(store.Record)
	if rec.Expired(time.Now()) {
		return nil, store.NotFound(name, key)
	}
	return &rec, nil
}

// Set implements store.Store.
func (s *Store) Set(_ context.Context, name, key string, value any, ttl time.Duration) error {
	rec, err := store.NewRecord(key, value, ttl)
	if err != nil {
		return err
	}
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	s.cache.Set(itemKey(name, key), rec, exp)
	return nil
}

// GetAll implements store.Store.
func (s *Store) GetAll(_ context.Context, name string) ([]store.Record, error) {
	prefix := name + sep
	now := time.Now()
	var recs []store.Record
	for k, item := range s.cache.Items() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rec := item.Object.(store.Record)
		if rec.Expired(now) {
			continue
		}
		recs = append(recs, rec)
	}
	store.SortRecords(recs)
	return recs, nil
}

// Remove implements store.Store.
func (s *Store) Remove(_ context.Context, name, key string) error {
	s.cache.Delete(itemKey(name, key))
	return nil
}

// Clear implements store.Store.
func (s *Store) Clear(_ context.Context, name string) error {
	prefix := name + sep
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Delete(k)
		}
	}
	return nil
}

// Purge implements store.Store.
func (s *Store) Purge(context.Context) (int, error) {
	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	return before - s.cache.ItemCount(), nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.cache.Flush()
	return nil
}
