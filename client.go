// Package watchsync reconciles watch state between Trakt and MyAnimeList.
//
// A run fetches both catalogs, resolves every source entry to its counterpart
// in the target catalog, computes the operations that bring the target in line
// with the source and applies them one at a time.
//
// Example usage:
//
//	client, err := watchsync.New(
//	    watchsync.WithGateway(traktGateway),
//	    watchsync.WithGateway(malGateway),
//	    watchsync.WithStore(st),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnOperation(func(o sync.Outcome) {
//	    log.Printf("%s %s: %s", o.Type, o.Title, o.Status)
//	})
//
//	// Preview the operations
//	plan, err := client.Analyze(ctx, catalogs.TraktToMAL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(plan.Summary)
//
//	// Apply them
//	result, err := client.Execute(ctx, plan, nil)
package watchsync

import (
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/resolver"
	"github.com/agentstation/watchsync/pkg/store"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// Client runs synchronizations between the configured catalogs.
type Client interface {
	// Syncer analyzes and applies runs
	Syncer

	// Mappings manages persisted identity mappings
	Mappings

	// Cache manages cached catalog responses
	Cache

	// Lists pushes MyAnimeList entries to Trakt custom lists
	Lists

	// Hooks provides access to event callback registration
	Hooks

	// Close releases the store.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options  *options
	store    store.Store
	mappings *resolver.MappingStore
	differ   differ.Differ
	engine   *pkgsync.Engine
	hooks    *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options:  o,
		store:    o.store,
		mappings: resolver.NewMappingStore(o.store, resolver.WithTTL(o.mappingTTL)),
		differ:   differ.New(differ.WithScores(o.scores)),
		hooks:    newHooks(),
	}

	gateways := make([]catalogs.Gateway, 0, len(o.gateways))
	for _, gw := range o.gateways {
		gateways = append(gateways, gw)
	}
	c.engine = pkgsync.New(
		pkgsync.WithGateways(gateways...),
		pkgsync.WithStore(o.store),
		pkgsync.WithDelay(o.delay),
	)
	return c, nil
}

// Close releases the store.
func (c *client) Close() error {
	return c.store.Close()
}

// gatewaysFor returns the source and target gateways of a direction.
func (c *client) gatewaysFor(dir catalogs.Direction) (catalogs.Gateway, catalogs.Gateway, error) {
	if err := dir.Validate(); err != nil {
		return nil, nil, err
	}
	src, ok := c.options.gateways[dir.Source()]
	if !ok {
		return nil, nil, errors.NewConfigError("gateways", dir.Source().DisplayName()+" is not configured", nil)
	}
	target, ok := c.options.gateways[dir.Target()]
	if !ok {
		return nil, nil, errors.NewConfigError("gateways", dir.Target().DisplayName()+" is not configured", nil)
	}
	return src, target, nil
}

// resolverFor builds the strategy chain for resolving into target.
func (c *client) resolverFor(target catalogs.Gateway) *resolver.Resolver {
	strategies := []resolver.Strategy{resolver.NewCacheStrategy(c.mappings)}
	if c.options.crossRef != nil {
		strategies = append(strategies, resolver.NewCrossReferenceStrategy(c.options.crossRef, target))
	}
	strategies = append(strategies, resolver.NewFuzzyStrategy(target,
		resolver.WithThresholds(c.options.threshold, c.options.altThreshold)))
	return resolver.New(c.mappings, strategies...)
}
