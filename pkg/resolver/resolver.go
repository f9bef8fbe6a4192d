// Package resolver maps an entry of one catalog to its counterpart in the
// other. Strategies run in order (stored mapping, cross-reference lookup,
// fuzzy title search) and the first hit wins. Every new hit is persisted as
// a mapping so later runs, in either direction, answer from the store.
//
// A miss is not an error: Resolve returns a nil Match.
package resolver

import (
	"context"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/logging"
)

// Resolver runs an ordered chain of strategies.
type Resolver struct {
	mappings   *MappingStore
	strategies []Strategy
}

// New creates a resolver. New hits are saved to mappings.
func New(mappings *MappingStore, strategies ...Strategy) *Resolver {
	return &Resolver{mappings: mappings, strategies: strategies}
}

// Strategies returns the strategy names in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the target identifier of src for the direction, or nil.
// The only error is cancellation of ctx.
func (r *Resolver) Resolve(ctx context.Context, src catalogs.Entry, dir catalogs.Direction) (*Match, error) {
	target := dir.Target()
	logger := logging.FromContext(ctx).With().
		Str("source_id", src.NativeID).
		Str("title", src.Title).
		Logger()

	for _, s := range r.strategies {
		m, err := s.Resolve(ctx, src, target)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			logger.Debug().Err(err).Str("strategy", s.Name()).Msg("Strategy failed, falling through")
			continue
		}
		if m == nil || m.TargetID == "" {
			continue
		}

		if m.Method != MethodCache && r.mappings != nil {
			mp := catalogs.NewMapping(src.Service, src.NativeID, m.TargetID)
			mp.Title, mp.Year = m.Title, m.Year
			mp.Method, mp.Confidence = m.Method, m.Confidence
			if _, err := r.mappings.Save(ctx, mp); err != nil {
				logger.Warn().Err(err).Msg("Failed to persist mapping")
			}
		}
		logger.Debug().Str("target_id", m.TargetID).Str("method", m.Method).Msg("Resolved")
		return m, nil
	}
	return nil, nil
}

// Pair resolves every source entry and attaches the target entry with the
// resolved identifier when targets contains it. Sources are processed in
// order so mappings saved for earlier entries are visible to later ones.
func (r *Resolver) Pair(ctx context.Context, sources, targets []catalogs.Entry, dir catalogs.Direction) ([]catalogs.PairedEntry, error) {
	index := make(map[string]int, len(targets))
	for i, t := range targets {
		index[t.NativeID] = i
	}

	pairs := make([]catalogs.PairedEntry, 0, len(sources))
	for _, src := range sources {
		m, err := r.Resolve(ctx, src, dir)
		if err != nil {
			return pairs, err
		}
		p := catalogs.PairedEntry{Source: src}
		if m != nil {
			p.Resolved = true
			p.TargetID = m.TargetID
			if i, ok := index[m.TargetID]; ok {
				t := targets[i]
				p.Target = &t
			}
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
