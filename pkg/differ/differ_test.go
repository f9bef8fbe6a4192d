package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

func pair(src catalogs.Entry, target *catalogs.Entry, targetID string) catalogs.PairedEntry {
	return catalogs.PairedEntry{Source: src, Target: target, TargetID: targetID, Resolved: targetID != ""}
}

func TestDiffNarutoScenario(t *testing.T) {
	src := catalogs.Entry{Service: catalogs.ServiceTrakt, NativeID: "naruto", Title: "Naruto", Status: catalogs.StatusWatching, EpisodesWatched: 50}
	target := &catalogs.Entry{Service: catalogs.ServiceMAL, NativeID: "20", Title: "Naruto", Status: catalogs.StatusPlanned, EpisodesWatched: 0}

	ops := New().Diff([]catalogs.PairedEntry{pair(src, target, "20")}, catalogs.TraktToMAL)
	require.Len(t, ops, 1)

	op := ops[0]
	assert.Equal(t, OperationUpdate, op.Type)
	assert.Equal(t, catalogs.ServiceMAL, op.Target)
	require.NotNil(t, op.Changes.Status)
	assert.Equal(t, catalogs.StatusPlanned, op.Changes.Status.From)
	assert.Equal(t, catalogs.StatusWatching, op.Changes.Status.To)
	require.NotNil(t, op.Changes.Episodes)
	assert.Equal(t, 0, op.Changes.Episodes.From)
	assert.Equal(t, 50, op.Changes.Episodes.To)
	assert.Nil(t, op.Changes.Score)
	assert.Equal(t, "status: planned -> watching, episodes: 0 -> 50", op.Changes.String())

	m := op.Mutation()
	assert.Equal(t, catalogs.MutationUpdate, m.Kind)
	assert.Equal(t, "20", m.TargetID)
	assert.Equal(t, target, m.Current)
}

func TestDiffUnresolvedSkips(t *testing.T) {
	src := catalogs.Entry{Title: "Unknown", Status: catalogs.StatusWatching}
	ops := New().Diff([]catalogs.PairedEntry{{Source: src}}, catalogs.TraktToMAL)
	require.Len(t, ops, 1)
	assert.Equal(t, OperationSkip, ops[0].Type)
	assert.Equal(t, ReasonNoMapping, ops[0].Reason)
}

func TestDiffAdd(t *testing.T) {
	src := catalogs.Entry{Title: "Mushishi", Status: catalogs.StatusCompleted, EpisodesWatched: 26, Score: 9}
	ops := New().Diff([]catalogs.PairedEntry{pair(src, nil, "457")}, catalogs.TraktToMAL)
	require.Len(t, ops, 1)

	op := ops[0]
	assert.Equal(t, OperationAdd, op.Type)
	assert.Equal(t, catalogs.StatusCompleted, op.Changes.Status.To)
	assert.Equal(t, catalogs.StatusNone, op.Changes.Status.From)
	assert.Equal(t, 26, op.Changes.Episodes.To)
	assert.Equal(t, 9, op.Changes.Score.To, "adds always carry the score")
	assert.Equal(t, catalogs.MutationAdd, op.Mutation().Kind)
}

func TestDiffMALToTraktStatusTable(t *testing.T) {
	d := New()
	tests := []struct {
		name   string
		status catalogs.Status
		want   OperationType
		to     catalogs.Status
		reason string
	}{
		{"watching", catalogs.StatusWatching, OperationAdd, catalogs.StatusWatching, ""},
		{"completed", catalogs.StatusCompleted, OperationAdd, catalogs.StatusCompleted, ""},
		{"planned", catalogs.StatusPlanned, OperationAdd, catalogs.StatusPlanned, ""},
		{"on hold becomes watching", catalogs.StatusOnHold, OperationAdd, catalogs.StatusWatching, ""},
		{"dropped is not propagated", catalogs.StatusDropped, OperationSkip, "", ReasonNotPropagated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := catalogs.Entry{Service: catalogs.ServiceMAL, Title: "X", Status: tt.status, EpisodesWatched: 3}
			ops := d.Diff([]catalogs.PairedEntry{pair(src, nil, "x")}, catalogs.MALToTrakt)
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, ops[0].Type)
			assert.Equal(t, tt.reason, ops[0].Reason)
			if tt.to != "" {
				assert.Equal(t, tt.to, ops[0].Changes.Status.To)
			}
		})
	}
}

func TestDiffMALToTraktWatchingNeedsEpisodes(t *testing.T) {
	d := New()
	for _, status := range []catalogs.Status{catalogs.StatusWatching, catalogs.StatusOnHold} {
		t.Run(string(status), func(t *testing.T) {
			src := catalogs.Entry{Service: catalogs.ServiceMAL, Title: "Naruto", Status: status}

			planned := &catalogs.Entry{Service: catalogs.ServiceTrakt, Status: catalogs.StatusPlanned}
			ops := d.Diff([]catalogs.PairedEntry{pair(src, planned, "naruto")}, catalogs.MALToTrakt)
			require.Len(t, ops, 1)
			assert.Equal(t, OperationSkip, ops[0].Type)
			assert.Equal(t, ReasonNotPropagated, ops[0].Reason)
			assert.True(t, ops[0].Changes.IsEmpty())

			ops = d.Diff([]catalogs.PairedEntry{pair(src, nil, "naruto")}, catalogs.MALToTrakt)
			require.Len(t, ops, 1)
			assert.Equal(t, OperationSkip, ops[0].Type)
			assert.Equal(t, ReasonNotPropagated, ops[0].Reason)

			src.EpisodesWatched = 4
			ops = d.Diff([]catalogs.PairedEntry{pair(src, planned, "naruto")}, catalogs.MALToTrakt)
			require.Len(t, ops, 1)
			assert.Equal(t, OperationUpdate, ops[0].Type)
			assert.Equal(t, "status: planned -> watching, episodes: 0 -> 4", ops[0].Changes.String())
		})
	}

	// MAL stores watching directly, so the other direction is unaffected.
	src := catalogs.Entry{Service: catalogs.ServiceTrakt, Title: "Naruto", Status: catalogs.StatusWatching}
	target := &catalogs.Entry{Service: catalogs.ServiceMAL, Status: catalogs.StatusPlanned}
	ops := d.Diff([]catalogs.PairedEntry{pair(src, target, "20")}, catalogs.TraktToMAL)
	require.Len(t, ops, 1)
	assert.Equal(t, OperationUpdate, ops[0].Type)
}

func TestDiffNeverRegressesProgress(t *testing.T) {
	src := catalogs.Entry{Title: "Naruto", Status: catalogs.StatusWatching, EpisodesWatched: 10}
	target := &catalogs.Entry{Status: catalogs.StatusWatching, EpisodesWatched: 50}

	ops := New().Diff([]catalogs.PairedEntry{pair(src, target, "20")}, catalogs.TraktToMAL)
	assert.Empty(t, ops, "nothing differs once regression is excluded")

	target.Status = catalogs.StatusCompleted
	ops = New().Diff([]catalogs.PairedEntry{pair(src, target, "20")}, catalogs.TraktToMAL)
	require.Len(t, ops, 1)
	assert.Nil(t, ops[0].Changes.Episodes)
	require.NotNil(t, ops[0].Changes.Status)
	assert.Equal(t, catalogs.StatusWatching, ops[0].Changes.Status.To, "status follows the source even backwards")
}

func TestDiffDroppedKeepsTargetStatus(t *testing.T) {
	src := catalogs.Entry{Title: "X", Status: catalogs.StatusDropped, EpisodesWatched: 5}
	target := &catalogs.Entry{Status: catalogs.StatusWatching, EpisodesWatched: 2}

	ops := New().Diff([]catalogs.PairedEntry{pair(src, target, "x")}, catalogs.MALToTrakt)
	require.Len(t, ops, 1)
	assert.Nil(t, ops[0].Changes.Status)
	assert.Equal(t, 5, ops[0].Changes.Episodes.To)
}

func TestDiffScores(t *testing.T) {
	src := catalogs.Entry{Title: "X", Status: catalogs.StatusCompleted, Score: 8}
	target := &catalogs.Entry{Status: catalogs.StatusCompleted, Score: 6}
	pairs := []catalogs.PairedEntry{pair(src, target, "x")}

	assert.Empty(t, New().Diff(pairs, catalogs.MALToTrakt))

	ops := New(WithScores(true)).Diff(pairs, catalogs.MALToTrakt)
	require.Len(t, ops, 1)
	assert.Equal(t, 6, ops[0].Changes.Score.From)
	assert.Equal(t, 8, ops[0].Changes.Score.To)
}

func TestDiffPreservesOrderAndIsDeterministic(t *testing.T) {
	pairs := []catalogs.PairedEntry{
		pair(catalogs.Entry{Title: "A", Status: catalogs.StatusWatching, EpisodesWatched: 3}, nil, "a"),
		{Source: catalogs.Entry{Title: "B"}},
		pair(catalogs.Entry{Title: "C", Status: catalogs.StatusCompleted}, &catalogs.Entry{Status: catalogs.StatusWatching}, "c"),
		pair(catalogs.Entry{Title: "D", Status: catalogs.StatusCompleted}, &catalogs.Entry{Status: catalogs.StatusCompleted}, "d"),
	}
	d := New()
	first := d.Diff(pairs, catalogs.TraktToMAL)
	second := d.Diff(pairs, catalogs.TraktToMAL)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "A", first[0].Title())
	assert.Equal(t, "B", first[1].Title())
	assert.Equal(t, "C", first[2].Title())

	s := Summarize(first)
	assert.Equal(t, Summary{Total: 3, Adds: 1, Updates: 1, Skips: 1}, s)
	assert.True(t, s.HasChanges())
	assert.Equal(t, "3 operations: 1 to add, 1 to update, 1 skipped", s.String())
}

func TestDiffEmpty(t *testing.T) {
	ops := New().Diff(nil, catalogs.TraktToMAL)
	assert.NotNil(t, ops)
	assert.Empty(t, ops)
	assert.False(t, Summarize(ops).HasChanges())
}

func TestWithStatusTable(t *testing.T) {
	d := New(WithStatusTable(catalogs.MALToTrakt, StatusTable{catalogs.StatusDropped: catalogs.StatusCompleted}))
	assert.Equal(t, catalogs.StatusCompleted, d.Project(catalogs.MALToTrakt, catalogs.StatusDropped))
	assert.Equal(t, catalogs.StatusNone, d.Project(catalogs.MALToTrakt, catalogs.StatusWatching))
}

func TestOperationString(t *testing.T) {
	skip := Operation{Type: OperationSkip, Pair: catalogs.PairedEntry{Source: catalogs.Entry{Title: "X"}}, Reason: ReasonNoMapping}
	assert.Equal(t, `skip "X": no mapping`, skip.String())
}
