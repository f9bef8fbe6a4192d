package watchsync

import (
	"context"

	"github.com/agentstation/utc"
	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Syncer = (*client)(nil)

// Syncer analyzes and applies runs.
type Syncer interface {
	// Analyze fetches both catalogs and computes the operations of a run without applying them.
	Analyze(ctx context.Context, dir catalogs.Direction, opts ...SyncOption) (*Plan, error)

	// Execute applies the operations of a plan.
	Execute(ctx context.Context, plan *Plan, onProgress func(pkgsync.Progress)) (*pkgsync.Result, error)

	// Sync analyzes and, unless dry run is set, executes.
	Sync(ctx context.Context, dir catalogs.Direction, opts ...SyncOption) (*Plan, *pkgsync.Result, error)

	// History returns persisted run results, newest first.
	History(ctx context.Context) ([]pkgsync.Result, error)
}

// SyncOptions controls a run.
type SyncOptions struct {
	Source     catalogs.SourceList    // Which source list to read (default all)
	DryRun     bool                   // Analyze only
	OnProgress func(pkgsync.Progress) // Called after every executed operation
}

// SyncOption is a function that configures SyncOptions.
type SyncOption func(*SyncOptions)

// NewSyncOptions applies opts to the defaults.
func NewSyncOptions(opts ...SyncOption) *SyncOptions {
	o := &SyncOptions{Source: catalogs.SourceList{Kind: catalogs.ListAll}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSource selects the source list.
func WithSource(list catalogs.SourceList) SyncOption {
	return func(o *SyncOptions) {
		o.Source = list
	}
}

// WithDryRun stops Sync after analysis.
func WithDryRun(enabled bool) SyncOption {
	return func(o *SyncOptions) {
		o.DryRun = enabled
	}
}

// WithProgress sets the progress callback used by Sync.
func WithProgress(fn func(pkgsync.Progress)) SyncOption {
	return func(o *SyncOptions) {
		o.OnProgress = fn
	}
}

// Plan is the analyzed, not yet applied, run.
type Plan struct {
	Direction   catalogs.Direction     `json:"direction" yaml:"direction"`
	Source      catalogs.SourceList    `json:"source" yaml:"source"`
	CreatedAt   utc.Time               `json:"created_at" yaml:"created_at"`
	SourceCount int                    `json:"source_count" yaml:"source_count"`
	TargetCount int                    `json:"target_count" yaml:"target_count"`
	Pairs       []catalogs.PairedEntry `json:"pairs" yaml:"pairs"`
	Operations  []differ.Operation     `json:"operations" yaml:"operations"`
	Summary     differ.Summary         `json:"summary" yaml:"summary"`
}

// Unresolved returns the number of source entries without a mapping.
func (p *Plan) Unresolved() int {
	n := 0
	for _, pair := range p.Pairs {
		if !pair.Resolved {
			n++
		}
	}
	return n
}

// Analyze fetches both catalogs concurrently, resolves and diffs. A fetch
// failure on either side aborts before any mutation happens.
func (c *client) Analyze(ctx context.Context, dir catalogs.Direction, opts ...SyncOption) (*Plan, error) {
	src, target, err := c.gatewaysFor(dir)
	if err != nil {
		return nil, err
	}
	options := NewSyncOptions(opts...)

	ctx = logging.WithDirection(ctx, dir.String())
	logger := logging.FromContext(ctx)
	logger.Info().Str("source", options.Source.String()).Msg("Fetching catalogs")

	var sources, targets []catalogs.Entry
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		entries, err := src.Entries(ctx, options.Source)
		if err != nil {
			return errors.WrapResource("fetch", dir.Source().String(), options.Source.String(), err)
		}
		sources = entries
		return nil
	})
	p.Go(func(ctx context.Context) error {
		entries, err := target.Entries(ctx, catalogs.SourceList{Kind: catalogs.ListAll})
		if err != nil {
			return errors.WrapResource("fetch", dir.Target().String(), string(catalogs.ListAll), err)
		}
		targets = entries
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}
	logger.Info().Int("source_entries", len(sources)).Int("target_entries", len(targets)).Msg("Fetched catalogs")

	pairs, err := c.resolverFor(target).Pair(ctx, sources, targets, dir)
	if err != nil {
		return nil, err
	}

	ops := c.differ.Diff(pairs, dir)
	plan := &Plan{
		Direction:   dir,
		Source:      options.Source,
		CreatedAt:   utc.Now(),
		SourceCount: len(sources),
		TargetCount: len(targets),
		Pairs:       pairs,
		Operations:  ops,
		Summary:     differ.Summarize(ops),
	}
	logger.Info().
		Int("unresolved", plan.Unresolved()).
		Str("summary", plan.Summary.String()).
		Msg("Analysis complete")
	return plan, nil
}

// Execute applies the operations of plan and fires hooks.
func (c *client) Execute(ctx context.Context, plan *Plan, onProgress func(pkgsync.Progress)) (*pkgsync.Result, error) {
	if plan == nil {
		return nil, errors.NewValidationError("plan", nil, "plan is nil")
	}
	ctx = logging.WithDirection(ctx, plan.Direction.String())

	result, err := c.engine.Execute(ctx, plan.Direction, plan.Operations, func(p pkgsync.Progress) {
		c.hooks.triggerOperation(p.Outcome)
		if onProgress != nil {
			onProgress(p)
		}
	})
	if result != nil {
		c.hooks.triggerRunComplete(result)
	}
	return result, err
}

// Sync analyzes and executes in one call.
func (c *client) Sync(ctx context.Context, dir catalogs.Direction, opts ...SyncOption) (*Plan, *pkgsync.Result, error) {
	options := NewSyncOptions(opts...)
	plan, err := c.Analyze(ctx, dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	if options.DryRun {
		return plan, nil, nil
	}
	result, err := c.Execute(ctx, plan, options.OnProgress)
	return plan, result, err
}

// History returns persisted run results, newest first.
func (c *client) History(ctx context.Context) ([]pkgsync.Result, error) {
	return c.engine.History(ctx)
}
