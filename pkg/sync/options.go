package sync

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/store"
)

// Option configures an Engine.
type Option func(*Engine)

// WithGateways registers the gateways operations are dispatched to, keyed by their service.
func WithGateways(gateways ...catalogs.Gateway) Option {
	return func(e *Engine) {
		for _, gw := range gateways {
			if gw != nil {
				e.gateways[gw.Service()] = gw
			}
		}
	}
}

// WithStore sets where run results are persisted. Without a store results are only returned.
func WithStore(s store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithDelay sets the pause after every operation. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() utc.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func defaults() *Engine {
	return &Engine{
		gateways: make(map[catalogs.Service]catalogs.Gateway),
		delay:    constants.OperationDelay,
		now:      utc.Now,
	}
}
