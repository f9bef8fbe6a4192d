package resolver

import (
	"context"
	"math"

	"github.com/agentstation/watchsync/internal/matcher"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/logging"
)

// Resolution methods recorded on matches and mappings.
const (
	MethodCache          = "cache"
	MethodCrossReference = "crossref"
	MethodFuzzy          = "fuzzy"
)

// epsilon absorbs float error so a score equal to the threshold is accepted.
const epsilon = 1e-9

// Match is a resolved target identifier.
type Match struct {
	TargetID   string  `json:"target_id" yaml:"target_id"`
	Title      string  `json:"title,omitempty" yaml:"title,omitempty"`
	Year       int     `json:"year,omitempty" yaml:"year,omitempty"`
	Method     string  `json:"method" yaml:"method"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Strategy is one step of the resolution chain. A miss is (nil, nil);
// errors are logged by the Resolver and treated as a miss.
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Resolve looks up the counterpart of src on the target service
	Resolve(ctx context.Context, src catalogs.Entry, target catalogs.Service) (*Match, error)
}

// CacheStrategy answers from stored mappings.
type CacheStrategy struct {
	mappings *MappingStore
}

// NewCacheStrategy creates a cache strategy.
func NewCacheStrategy(m *MappingStore) *CacheStrategy {
	return &CacheStrategy{mappings: m}
}

// Name implements Strategy.
func (s *CacheStrategy) Name() string { return MethodCache }

// Resolve implements Strategy.
func (s *CacheStrategy) Resolve(ctx context.Context, src catalogs.Entry, target catalogs.Service) (*Match, error) {
	mp, err := s.mappings.Lookup(ctx, src.Service, src.NativeID)
	if err != nil || mp == nil {
		return nil, err
	}
	return &Match{
		TargetID:   mp.IDFor(target),
		Title:      mp.Title,
		Year:       mp.Year,
		Method:     MethodCache,
		Confidence: 1,
	}, nil
}

// CrossReference looks up the identifiers other platforms use for a title.
type CrossReference interface {
	LookupBySource(ctx context.Context, platform, id string) (map[string]string, error)
}

// DefaultPlatforms are the cross-reference platform names of the catalogs.
var DefaultPlatforms = map[catalogs.Service]string{
	catalogs.ServiceTrakt: "trakt",
	catalogs.ServiceMAL:   "myanimelist",
}

// CrossReferenceStrategy asks an authoritative cross-reference service and
// confirms the answer against the target catalog.
type CrossReferenceStrategy struct {
	lookup    CrossReference
	target    catalogs.Gateway
	platforms map[catalogs.Service]string
}

// NewCrossReferenceStrategy creates a cross-reference strategy resolving onto target.
func NewCrossReferenceStrategy(lookup CrossReference, target catalogs.Gateway) *CrossReferenceStrategy {
	return &CrossReferenceStrategy{lookup: lookup, target: target, platforms: DefaultPlatforms}
}

// Name implements Strategy.
func (s *CrossReferenceStrategy) Name() string { return MethodCrossReference }

// Resolve implements Strategy.
func (s *CrossReferenceStrategy) Resolve(ctx context.Context, src catalogs.Entry, target catalogs.Service) (*Match, error) {
	if target != s.target.Service() {
		return nil, nil
	}
	sourceID := src.NativeID
	if id, ok := src.ExternalID(s.platforms[src.Service]); ok {
		sourceID = id
	}

	ids, err := s.lookup.LookupBySource(ctx, s.platforms[src.Service], sourceID)
	if err != nil {
		return nil, err
	}
	targetID := ids[s.platforms[target]]
	if targetID == "" {
		return nil, nil
	}

	// The cross-reference may use a different identifier form (numeric
	// Trakt id vs slug), so the detail record supplies the canonical one.
	e, err := s.target.Entry(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &Match{
		TargetID:   e.NativeID,
		Title:      e.Title,
		Year:       e.Year,
		Method:     MethodCrossReference,
		Confidence: 1,
	}, nil
}

// FuzzyStrategy searches the target catalog by title and scores candidates
// by title similarity and release year.
type FuzzyStrategy struct {
	target       catalogs.Gateway
	threshold    float64
	altThreshold float64
}

// FuzzyOption configures a FuzzyStrategy.
type FuzzyOption func(*FuzzyStrategy)

// WithThresholds sets the acceptance thresholds for primary and alternative title matches.
func WithThresholds(primary, alternative float64) FuzzyOption {
	return func(s *FuzzyStrategy) {
		if primary > 0 {
			s.threshold = primary
		}
		if alternative > 0 {
			s.altThreshold = alternative
		}
	}
}

// NewFuzzyStrategy creates a fuzzy strategy resolving onto target.
func NewFuzzyStrategy(target catalogs.Gateway, opts ...FuzzyOption) *FuzzyStrategy {
	s := &FuzzyStrategy{
		target:       target,
		threshold:    constants.MatchThreshold,
		altThreshold: constants.AlternativeMatchThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Strategy.
func (s *FuzzyStrategy) Name() string { return MethodFuzzy }

// Resolve implements Strategy.
func (s *FuzzyStrategy) Resolve(ctx context.Context, src catalogs.Entry, target catalogs.Service) (*Match, error) {
	if target != s.target.Service() || src.Title == "" {
		return nil, nil
	}
	candidates, err := s.target.Search(ctx, src.Title)
	if err != nil {
		return nil, err
	}

	best, ok := Score(src, candidates)
	if !ok {
		return nil, nil
	}
	threshold := s.threshold
	if best.ViaAlternative {
		threshold = s.altThreshold
	}

	logger := logging.FromContext(ctx).With().
		Str("title", src.Title).
		Str("candidate", best.Candidate.Title).
		Float64("score", best.Score).
		Float64("threshold", threshold).
		Logger()
	if best.Score+epsilon < threshold {
		logger.Debug().Msg("Best candidate below threshold")
		return nil, nil
	}
	logger.Debug().Msg("Fuzzy match accepted")

	return &Match{
		TargetID:   best.Candidate.NativeID,
		Title:      best.Candidate.Title,
		Year:       best.Candidate.Year,
		Method:     MethodFuzzy,
		Confidence: math.Min(best.Score, 1),
	}, nil
}

// Scored is a candidate with its composite score.
type Scored struct {
	Candidate      catalogs.Entry
	Score          float64
	Similarity     float64
	YearMatch      bool
	ViaAlternative bool // the best similarity came from an alternative title
}

// Score rates every candidate against src and returns the highest-scoring
// one. Earlier candidates win ties.
func Score(src catalogs.Entry, candidates []catalogs.Entry) (Scored, bool) {
	var (
		best  Scored
		found bool
	)
	sources := src.Titles()
	for _, c := range candidates {
		sim, si, ci := matcher.Best(sources, c.Titles())
		if si < 0 {
			continue
		}
		sc := Scored{
			Candidate:      c,
			Similarity:     sim,
			YearMatch:      src.Year > 0 && src.Year == c.Year,
			ViaAlternative: si > 0 || ci > 0,
		}
		sc.Score = constants.TitleWeight * sim
		if sc.YearMatch {
			sc.Score += constants.YearWeight
		}
		if !found || sc.Score > best.Score {
			best, found = sc, true
		}
	}
	return best, found
}
