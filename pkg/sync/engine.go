// Package sync executes differ operations against catalog gateways.
//
// Operations run one at a time in input order. A failed mutation is recorded
// in the run result and the run continues; only authentication failures and
// context cancellation stop a run early. Every run is persisted to the
// sync_history store under its timestamp.
package sync

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/differ"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// runIDLayout sorts lexically in chronological order.
const runIDLayout = "20060102T150405.000000000Z"

// Engine applies operations sequentially.
type Engine struct {
	gateways map[catalogs.Service]catalogs.Gateway
	store    store.Store
	delay    time.Duration
	now      func() utc.Time
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := defaults()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies ops in order and returns the run result recorded under dir.
//
// onProgress, when not nil, is called after every operation. The returned
// error is non-nil only when the run was aborted, by cancellation or by an
// authentication failure; the partial result is returned and persisted in
// that case too.
func (e *Engine) Execute(ctx context.Context, dir catalogs.Direction, ops []differ.Operation, onProgress func(Progress)) (*Result, error) {
	started := e.now()
	result := &Result{
		ID:        started.Time.UTC().Format(runIDLayout),
		Direction: dir,
		StartedAt: started,
		Total:     len(ops),
		Outcomes:  make([]Outcome, 0, len(ops)),
	}

	ctx = logging.WithRunID(ctx, result.ID)
	logger := logging.FromContext(ctx)
	logger.Info().Int("operations", len(ops)).Msg("Executing operations")

	var runErr error
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		outcome, err := e.apply(ctx, i, op)
		result.record(outcome)
		if onProgress != nil {
			onProgress(Progress{
				Completed: i + 1,
				Total:     len(ops),
				Operation: op,
				Outcome:   outcome,
			})
		}
		if errors.IsAuthError(err) {
			runErr = err
			break
		}

		// The pause follows every operation. Cancellation during the last
		// one does not abort a run that has already consumed every operation.
		if err := e.wait(ctx); err != nil && i < len(ops)-1 {
			runErr = err
			break
		}
	}

	finished := e.now()
	result.FinishedAt = finished
	result.Duration = finished.Time.Sub(started.Time)
	result.Aborted = runErr != nil

	e.persist(ctx, result)

	var event *zerolog.Event
	if result.Aborted {
		event = logger.Warn().Err(runErr)
	} else {
		event = logger.Info()
	}
	event.
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Execution finished")

	return result, runErr
}

// apply runs one operation. Skips never touch the network.
func (e *Engine) apply(ctx context.Context, i int, op differ.Operation) (Outcome, error) {
	outcome := newOutcome(i, op)
	logger := logging.FromContext(ctx).With().
		Str("operation", string(op.Type)).
		Str("target", op.Target.String()).
		Str("title", op.Title()).
		Logger()

	var err error
	switch op.Type {
	case differ.OperationSkip:
		outcome.Status = OutcomeSkipped
		logger.Debug().Str("reason", op.Reason).Msg("Skipped")
		return outcome, nil
	case differ.OperationAdd, differ.OperationUpdate:
		gw, ok := e.gateways[op.Target]
		if !ok {
			err = errors.NewConfigError("sync", fmt.Sprintf("no gateway registered for %s", op.Target), nil)
			break
		}
		err = gw.Mutate(ctx, op.Mutation())
	default:
		err = errors.NewValidationError("type", op.Type, "unknown operation type")
	}

	if err != nil {
		opErr := errors.NewOperationError(string(op.Type), op.Target.String(), operationID(op), err)
		outcome.Status = OutcomeFailed
		outcome.Error = opErr.Error()
		logger.Warn().Err(err).Msg("Operation failed")
		return outcome, opErr
	}

	outcome.Status = OutcomeSuccess
	logger.Debug().Str("changes", op.Changes.String()).Msg("Applied")
	return outcome, nil
}

func (e *Engine) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// persist writes the result even when ctx is already canceled.
func (e *Engine) persist(ctx context.Context, result *Result) {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.StoreTimeout)
	defer cancel()
	if err := e.store.Set(ctx, store.SyncHistory, result.ID, result, 0); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Failed to save run result")
	}
}

// History returns persisted run results, newest first.
func (e *Engine) History(ctx context.Context) ([]Result, error) {
	if e.store == nil {
		return []Result{}, nil
	}
	results, err := store.LoadAll[Result](ctx, e.store, store.SyncHistory)
	if err != nil {
		return nil, err
	}
	slices.Reverse(results)
	return results, nil
}

// ClearHistory removes every persisted run result.
func (e *Engine) ClearHistory(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Clear(ctx, store.SyncHistory)
}

func operationID(op differ.Operation) string {
	if id := op.TargetID(); id != "" {
		return id
	}
	return op.Pair.Source.NativeID
}
