package watchsync

import (
	"context"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ Mappings = (*client)(nil)
	_ Cache    = (*client)(nil)
)

// Mappings manages persisted identity mappings.
type Mappings interface {
	// Mappings returns every live mapping.
	Mappings(ctx context.Context) ([]catalogs.Mapping, error)

	// RemoveMapping forgets the mapping of id on service, on both sides.
	RemoveMapping(ctx context.Context, service catalogs.Service, id string) error

	// ClearMappings forgets every mapping.
	ClearMappings(ctx context.Context) error
}

// Cache manages cached catalog responses.
type Cache interface {
	// ClearCache drops every cached catalog response. Mappings, tokens and history are kept.
	ClearCache(ctx context.Context) error

	// PurgeExpired deletes expired records from every store.
	PurgeExpired(ctx context.Context) (int, error)
}

// Mappings returns every live mapping.
func (c *client) Mappings(ctx context.Context) ([]catalogs.Mapping, error) {
	return c.mappings.All(ctx)
}

// RemoveMapping forgets the mapping of id on service.
func (c *client) RemoveMapping(ctx context.Context, service catalogs.Service, id string) error {
	return c.mappings.Remove(ctx, service, id)
}

// ClearMappings forgets every mapping.
func (c *client) ClearMappings(ctx context.Context) error {
	return c.mappings.Clear(ctx)
}

// ClearCache drops every response cache.
func (c *client) ClearCache(ctx context.Context) error {
	for _, name := range store.CacheNames() {
		if err := c.store.Clear(ctx, name); err != nil {
			return err
		}
		logging.FromContext(ctx).Debug().Str("store", name).Msg("Cleared cache")
	}
	return nil
}

// PurgeExpired deletes expired records from every store.
func (c *client) PurgeExpired(ctx context.Context) (int, error) {
	return c.store.Purge(ctx)
}
