package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/store/memory"
)

type fakeGateway struct {
	service catalogs.Service
	fail    map[string]error
	applied []catalogs.Mutation
	onCall  func()
}

func (f *fakeGateway) Service() catalogs.Service { return f.service }

func (f *fakeGateway) Entries(context.Context, catalogs.SourceList) ([]catalogs.Entry, error) {
	return nil, nil
}

func (f *fakeGateway) Entry(context.Context, string) (*catalogs.Entry, error) { return nil, nil }

func (f *fakeGateway) Search(context.Context, string) ([]catalogs.Entry, error) { return nil, nil }

func (f *fakeGateway) Mutate(_ context.Context, m catalogs.Mutation) error {
	if f.onCall != nil {
		f.onCall()
	}
	f.applied = append(f.applied, m)
	return f.fail[m.TargetID]
}

func op(typ differ.OperationType, title, targetID string) differ.Operation {
	return differ.Operation{
		Type:   typ,
		Target: catalogs.ServiceMAL,
		Pair: catalogs.PairedEntry{
			Source:   catalogs.Entry{Service: catalogs.ServiceTrakt, NativeID: "src-" + targetID, Title: title, Status: catalogs.StatusWatching},
			TargetID: targetID,
			Resolved: targetID != "",
		},
		Changes: catalogs.Changes{Status: &catalogs.Change[catalogs.Status]{To: catalogs.StatusWatching}},
	}
}

func fixedClock() func() utc.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() utc.Time {
		t = t.Add(time.Second)
		return utc.New(t)
	}
}

func newEngine(gw *fakeGateway, s store.Store) *Engine {
	return New(WithGateways(gw), WithStore(s), WithDelay(0), WithClock(fixedClock()))
}

func TestExecutePartialFailureIsolation(t *testing.T) {
	gw := &fakeGateway{
		service: catalogs.ServiceMAL,
		fail:    map[string]error{"2": errors.NewUpstreamError("mal", 500, "boom")},
	}
	s := memory.New(0)
	e := newEngine(gw, s)

	var progress []Progress
	ops := []differ.Operation{
		op(differ.OperationAdd, "One", "1"),
		op(differ.OperationUpdate, "Two", "2"),
		op(differ.OperationUpdate, "Three", "3"),
	}
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, ops, func(p Progress) { progress = append(progress, p) })
	require.NoError(t, err)

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.False(t, result.Aborted)
	assert.Equal(t, catalogs.TraktToMAL, result.Direction)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, OutcomeSuccess, result.Outcomes[0].Status)
	assert.Equal(t, OutcomeFailed, result.Outcomes[1].Status)
	assert.Contains(t, result.Outcomes[1].Error, "boom")
	assert.Equal(t, OutcomeSuccess, result.Outcomes[2].Status)
	assert.Len(t, gw.applied, 3)

	require.Len(t, progress, 3)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Completed)
		assert.Equal(t, 3, p.Total)
	}
	assert.InDelta(t, 100.0, progress[2].Percent(), 0.001)
	assert.Equal(t, "2 successful, 1 failed, 0 skipped", result.Summary())
	assert.Len(t, result.Failures(), 1)
}

func TestExecuteEmpty(t *testing.T) {
	gw := &fakeGateway{service: catalogs.ServiceMAL}
	e := newEngine(gw, memory.New(0))

	called := false
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, nil, func(Progress) { called = true })
	require.NoError(t, err)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.NotNil(t, result.Outcomes)
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, gw.applied)
	assert.False(t, called)

	history, err := e.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, catalogs.TraktToMAL, history[0].Direction, "empty runs keep their direction")
}

func TestExecuteSkipsWithoutNetwork(t *testing.T) {
	gw := &fakeGateway{service: catalogs.ServiceMAL}
	e := newEngine(gw, nil)

	skip := op(differ.OperationSkip, "Unknown", "")
	skip.Reason = differ.ReasonNoMapping
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, []differ.Operation{skip}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, differ.ReasonNoMapping, result.Outcomes[0].Reason)
	assert.Empty(t, gw.applied)
}

func TestExecuteMissingGateway(t *testing.T) {
	e := New(WithDelay(0))
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, []differ.Operation{op(differ.OperationAdd, "One", "1")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Outcomes[0].Error, "no gateway registered for mal")
}

func TestExecuteAuthErrorAborts(t *testing.T) {
	gw := &fakeGateway{
		service: catalogs.ServiceMAL,
		fail:    map[string]error{"1": errors.NewAuthError("mal", "refresh failed", nil)},
	}
	s := memory.New(0)
	e := newEngine(gw, s)

	ops := []differ.Operation{op(differ.OperationAdd, "One", "1"), op(differ.OperationAdd, "Two", "2")}
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, ops, nil)
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err))
	assert.True(t, result.Aborted)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Outcomes, 1)
	assert.Len(t, gw.applied, 1)

	history, err := e.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Aborted)
}

func TestExecuteCancellationYieldsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := &fakeGateway{service: catalogs.ServiceMAL}
	gw.onCall = func() {
		if len(gw.applied) == 1 {
			cancel()
		}
	}
	s := memory.New(0)
	e := newEngine(gw, s)

	ops := []differ.Operation{
		op(differ.OperationAdd, "One", "1"),
		op(differ.OperationAdd, "Two", "2"),
		op(differ.OperationAdd, "Three", "3"),
	}
	result, err := e.Execute(ctx, catalogs.TraktToMAL, ops, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Aborted)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Processed())
	assert.Equal(t, 3, result.Total)
	assert.Contains(t, result.Summary(), "aborted after 2 of 3")

	history, err := e.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1, "aborted runs are persisted")
}

func TestExecuteDelaysAfterEveryOperation(t *testing.T) {
	gw := &fakeGateway{service: catalogs.ServiceMAL}
	delay := 30 * time.Millisecond
	e := New(WithGateways(gw), WithDelay(delay))

	start := time.Now()
	result, err := e.Execute(context.Background(), catalogs.TraktToMAL, []differ.Operation{
		op(differ.OperationAdd, "One", "1"),
		op(differ.OperationAdd, "Two", "2"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestExecuteCancelDuringFinalDelayCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{service: catalogs.ServiceMAL, onCall: cancel}
	e := New(WithGateways(gw), WithDelay(time.Hour))

	result, err := e.Execute(ctx, catalogs.TraktToMAL, []differ.Operation{op(differ.OperationAdd, "One", "1")}, nil)
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.Equal(t, 1, result.Successful)
}

func TestExecuteDelayRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{service: catalogs.ServiceMAL, onCall: cancel}
	e := New(WithGateways(gw), WithDelay(time.Hour))

	start := time.Now()
	result, err := e.Execute(ctx, catalogs.TraktToMAL, []differ.Operation{op(differ.OperationAdd, "One", "1"), op(differ.OperationAdd, "Two", "2")}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, 1, result.Successful)
}

func TestHistoryNewestFirst(t *testing.T) {
	gw := &fakeGateway{service: catalogs.ServiceMAL}
	s := memory.New(0)
	e := newEngine(gw, s)

	for i := range 3 {
		_, err := e.Execute(context.Background(), catalogs.TraktToMAL, []differ.Operation{op(differ.OperationAdd, fmt.Sprintf("Show %d", i), "1")}, nil)
		require.NoError(t, err)
	}

	history, err := e.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].StartedAt.Time.After(history[1].StartedAt.Time))
	assert.Equal(t, "Show 2", history[0].Outcomes[0].Title)

	require.NoError(t, e.ClearHistory(context.Background()))
	history, err = e.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryWithoutStore(t *testing.T) {
	history, err := New().History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}
