package resolver

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// MappingStore persists identity mappings under both trakt-{id} and mal-{id}
// so lookups work from either side.
type MappingStore struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

// MappingOption configures a MappingStore.
type MappingOption func(*MappingStore)

// WithTTL sets the retention window of new mappings.
func WithTTL(ttl time.Duration) MappingOption {
	return func(m *MappingStore) {
		m.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MappingOption {
	return func(m *MappingStore) {
		m.now = now
	}
}

// NewMappingStore creates a mapping store on top of s.
func NewMappingStore(s store.Store, opts ...MappingOption) *MappingStore {
	m := &MappingStore{store: s, ttl: constants.MappingTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns the live mapping of id on service s, or nil.
func (m *MappingStore) Lookup(ctx context.Context, s catalogs.Service, id string) (*catalogs.Mapping, error) {
	mp, err := store.Load[catalogs.Mapping](ctx, m.store, store.Mappings, catalogs.MappingKey(s, id))
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !mp.Live(utc.New(m.now())) || mp.IDFor(s) != id {
		return nil, nil
	}
	return &mp, nil
}

// Save stamps and stores a mapping on both sides. A previous mapping of
// either id to a different partner is removed so each id has at most one
// live mapping.
func (m *MappingStore) Save(ctx context.Context, mp catalogs.Mapping) (catalogs.Mapping, error) {
	if mp.TraktID == "" || mp.MALID == "" {
		return mp, errors.NewValidationError("mapping", mp, "mapping requires both identifiers")
	}
	now := m.now()
	mp.DiscoveredAt = utc.New(now)
	mp.ExpiresAt = utc.New(now.Add(m.ttl))

	for _, s := range []catalogs.Service{catalogs.ServiceTrakt, catalogs.ServiceMAL} {
		if err := m.evictStale(ctx, s, mp); err != nil {
			return mp, err
		}
	}
	for _, s := range []catalogs.Service{catalogs.ServiceTrakt, catalogs.ServiceMAL} {
		if err := m.store.Set(ctx, store.Mappings, catalogs.MappingKey(s, mp.IDFor(s)), mp, m.ttl); err != nil {
			return mp, err
		}
	}

	logging.FromContext(ctx).Debug().
		Str("trakt_id", mp.TraktID).
		Str("mal_id", mp.MALID).
		Str("method", mp.Method).
		Msg("Saved mapping")
	return mp, nil
}

// evictStale removes the partner record of an older mapping of mp's id on s.
func (m *MappingStore) evictStale(ctx context.Context, s catalogs.Service, mp catalogs.Mapping) error {
	old, err := m.Lookup(ctx, s, mp.IDFor(s))
	if err != nil || old == nil {
		return err
	}
	partner := old.Partner(s)
	if partner == mp.Partner(s) {
		return nil
	}
	other := catalogs.ServiceMAL
	if s == catalogs.ServiceMAL {
		other = catalogs.ServiceTrakt
	}
	return m.store.Remove(ctx, store.Mappings, catalogs.MappingKey(other, partner))
}

// All returns every live mapping once, ordered by Trakt id.
func (m *MappingStore) All(ctx context.Context) ([]catalogs.Mapping, error) {
	recs, err := m.store.GetAll(ctx, store.Mappings)
	if err != nil {
		return nil, err
	}
	now := utc.New(m.now())
	seen := make(map[[2]string]struct{}, len(recs)/2)
	out := make([]catalogs.Mapping, 0, len(recs)/2)
	for _, rec := range recs {
		var mp catalogs.Mapping
		if err := rec.Decode(&mp); err != nil {
			return nil, err
		}
		pair := [2]string{mp.TraktID, mp.MALID}
		if _, ok := seen[pair]; ok || !mp.Live(now) {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, mp)
	}
	return out, nil
}

// Remove deletes the mapping of id on s, on both sides.
func (m *MappingStore) Remove(ctx context.Context, s catalogs.Service, id string) error {
	mp, err := m.Lookup(ctx, s, id)
	if err != nil {
		return err
	}
	if mp == nil {
		return errors.NewNotFoundError("mapping", catalogs.MappingKey(s, id))
	}
	for _, side := range []catalogs.Service{catalogs.ServiceTrakt, catalogs.ServiceMAL} {
		if err := m.store.Remove(ctx, store.Mappings, catalogs.MappingKey(side, mp.IDFor(side))); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every mapping.
func (m *MappingStore) Clear(ctx context.Context) error {
	return m.store.Clear(ctx, store.Mappings)
}
