package watchsync

import (
	"time"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/resolver"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/store/memory"
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the Client configuration.
type options struct {
	gateways     map[catalogs.Service]catalogs.Gateway
	store        store.Store
	crossRef     resolver.CrossReference
	threshold    float64
	altThreshold float64
	scores       bool
	delay        time.Duration
	mappingTTL   time.Duration
}

func defaults() *options {
	return &options{
		gateways:     make(map[catalogs.Service]catalogs.Gateway),
		threshold:    constants.MatchThreshold,
		altThreshold: constants.AlternativeMatchThreshold,
		delay:        constants.OperationDelay,
		mappingTTL:   constants.MappingTTL,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store = memory.New(0)
	}
	return o, nil
}

// WithGateway registers a catalog gateway under its service.
func WithGateway(gw catalogs.Gateway) Option {
	return func(o *options) error {
		if gw == nil {
			return errors.NewValidationError("gateway", nil, "gateway is nil")
		}
		o.gateways[gw.Service()] = gw
		return nil
	}
}

// WithStore configures where mappings, caches and history are kept.
// Without it an in-memory store is used.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithCrossReference enables the authoritative cross-reference strategy.
func WithCrossReference(x resolver.CrossReference) Option {
	return func(o *options) error {
		o.crossRef = x
		return nil
	}
}

// WithThresholds sets the fuzzy acceptance thresholds for primary and alternative title matches.
func WithThresholds(primary, alternative float64) Option {
	return func(o *options) error {
		if primary < 0 || primary > 1 || alternative < 0 || alternative > 1 {
			return errors.NewValidationError("threshold", primary, "thresholds must be between 0 and 1")
		}
		if primary > 0 {
			o.threshold = primary
		}
		if alternative > 0 {
			o.altThreshold = alternative
		}
		return nil
	}
}

// WithScores includes score differences in update operations.
func WithScores(enabled bool) Option {
	return func(o *options) error {
		o.scores = enabled
		return nil
	}
}

// WithOperationDelay sets the pause between executed operations.
func WithOperationDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("delay", d, "delay must be non-negative")
		}
		o.delay = d
		return nil
	}
}

// WithMappingTTL sets how long discovered mappings stay live.
func WithMappingTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl <= 0 {
			return errors.NewValidationError("mapping_ttl", ttl, "ttl must be positive")
		}
		o.mappingTTL = ttl
		return nil
	}
}
