// Package store defines the persistent key-value collaborator used for
// identity mappings, cached catalog responses, tokens and run history.
//
// Records live in named stores. Every record carries CachedAt and an optional
// ExpiresAt; a record whose ExpiresAt has passed is treated as absent by Get
// and GetAll in every backend.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/errors"
)

// Store names.
const (
	Mappings        = "mappings"          // identity mappings, keyed {service}-{id}
	TraktCache      = "trakt_cache"       // cached Trakt responses
	MALCache        = "mal_cache"         // cached MyAnimeList responses
	IDsMoeCache     = "idsmoe_cache"      // cached cross-reference lookups
	SyncHistory     = "sync_history"      // run results, keyed by timestamp
	ListSyncHistory = "list_sync_history" // list push results, keyed by timestamp
	Tokens          = "tokens"            // OAuth tokens, keyed by service
)

// Names lists every store used by watchsync.
func Names() []string {
	return []string{Mappings, TraktCache, MALCache, IDsMoeCache, SyncHistory, ListSyncHistory, Tokens}
}

// CacheNames lists the response caches that can be cleared without losing user data.
func CacheNames() []string {
	return []string{TraktCache, MALCache, IDsMoeCache}
}

// Record is one stored value.
type Record struct {
	Key       string          `json:"key" yaml:"key"`
	Data      json.RawMessage `json:"data" yaml:"data"`
	CachedAt  utc.Time        `json:"cached_at" yaml:"cached_at"`
	ExpiresAt *utc.Time       `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// NewRecord encodes value into a record that expires after ttl.
// A non-positive ttl means the record never expires.
func NewRecord(key string, value any, ttl time.Duration) (Record, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Record{}, errors.WrapParse("json", key, err)
	}
	now := utc.Now()
	rec := Record{Key: key, Data: data, CachedAt: now}
	if ttl > 0 {
		exp := utc.New(now.Time.Add(ttl))
		rec.ExpiresAt = &exp
	}
	return rec, nil
}

// Expired reports whether the record has expired at now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(r.ExpiresAt.Time)
}

// TTL returns the remaining lifetime, or 0 for records that never expire.
func (r Record) TTL(now time.Time) time.Duration {
	if r.ExpiresAt == nil {
		return 0
	}
	return r.ExpiresAt.Time.Sub(now)
}

// Decode unmarshals the record data into v.
func (r Record) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.WrapParse("json", r.Key, err)
	}
	return nil
}

// Store is a namespaced key-value store with per-record expiry.
type Store interface {
	// Get returns a live record or a NotFoundError.
	Get(ctx context.Context, store, key string) (*Record, error)
	// Set writes value under key, replacing any previous record.
	Set(ctx context.Context, store, key string, value any, ttl time.Duration) error
	// GetAll returns every live record of a store ordered by key.
	GetAll(ctx context.Context, store string) ([]Record, error)
	// Remove deletes a record. Removing a missing key is not an error.
	Remove(ctx context.Context, store, key string) error
	// Clear deletes every record of a store.
	Clear(ctx context.Context, store string) error
	// Purge deletes expired records from every store and reports how many were removed.
	Purge(ctx context.Context) (int, error)
	// Close releases the backend.
	Close() error
}

// Load fetches key and decodes it into a T.
func Load[T any](ctx context.Context, s Store, store, key string) (T, error) {
	var out T
	rec, err := s.Get(ctx, store, key)
	if err != nil {
		return out, err
	}
	err = rec.Decode(&out)
	return out, err
}

// LoadAll decodes every live record of a store into a slice of T.
func LoadAll[T any](ctx context.Context, s Store, store string) ([]T, error) {
	recs, err := s.GetAll(ctx, store)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := rec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// NotFound returns the error backends use for absent or expired records.
func NotFound(store, key string) error {
	return errors.NewNotFoundError(store, key)
}

// SortRecords orders records by key.
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
}
