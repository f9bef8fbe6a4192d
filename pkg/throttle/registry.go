package throttle

import (
	"sort"
	"sync"
	"time"

	"github.com/agentstation/watchsync/pkg/constants"
)

// Limit is the rate limit configuration of one upstream service.
type Limit struct {
	MaxRequests int           `mapstructure:"max_requests" json:"max_requests" yaml:"max_requests"`
	Window      time.Duration `mapstructure:"window" json:"window" yaml:"window"`
}

// DefaultLimits are the documented limits of the supported upstreams.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		"trakt":  {MaxRequests: constants.TraktMaxRequests, Window: constants.TraktWindow},
		"mal":    {MaxRequests: constants.MALMaxRequests, Window: constants.MALWindow},
		"idsmoe": {MaxRequests: constants.IDsMoeMaxRequests, Window: constants.IDsMoeWindow},
	}
}

// Registry hands out one shared throttle per upstream so that every caller
// of the same service is serialized through the same window.
type Registry struct {
	mu        sync.Mutex
	limits    map[string]Limit
	throttles map[string]*Throttle
	opts      []Option
}

// NewRegistry creates a registry. Limits override DefaultLimits per service.
func NewRegistry(limits map[string]Limit, opts ...Option) *Registry {
	merged := DefaultLimits()
	for name, l := range limits {
		if l.MaxRequests > 0 && l.Window > 0 {
			merged[name] = l
		}
	}
	return &Registry{
		limits:    merged,
		throttles: make(map[string]*Throttle),
		opts:      opts,
	}
}

// For returns the throttle of the named service, creating it on first use.
// Unknown services get an unbounded throttle that only enforces spacing.
func (r *Registry) For(name string) *Throttle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.throttles[name]; ok {
		return t
	}
	l := r.limits[name]
	opts := append([]Option{WithName(name)}, r.opts...)
	t := New(l.MaxRequests, l.Window, opts...)
	r.throttles[name] = t
	return t
}

// Stats returns a snapshot of every throttle created so far.
func (r *Registry) Stats() []Stats {
	r.mu.Lock()
	throttles := make([]*Throttle, 0, len(r.throttles))
	for _, t := range r.throttles {
		throttles = append(throttles, t)
	}
	r.mu.Unlock()

	stats := make([]Stats, 0, len(throttles))
	for _, t := range throttles {
		stats = append(stats, t.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}
