package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

func TestOperationsToTableData(t *testing.T) {
	ops := []differ.Operation{
		{
			Type:   differ.OperationUpdate,
			Target: catalogs.ServiceMAL,
			Pair: catalogs.PairedEntry{
				Source:   catalogs.Entry{Service: catalogs.ServiceTrakt, NativeID: "naruto", Title: "Naruto"},
				TargetID: "20",
				Resolved: true,
			},
			Changes: catalogs.Changes{Episodes: &catalogs.Change[int]{From: 20, To: 50}},
		},
		{
			Type:   differ.OperationSkip,
			Target: catalogs.ServiceMAL,
			Pair:   catalogs.PairedEntry{Source: catalogs.Entry{NativeID: "x", Title: "Unknown Show"}},
			Reason: differ.ReasonNoMapping,
		},
	}

	data := OperationsToTableData(ops)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"1", "update", "Naruto", "20", "episodes: 20 -> 50"}, data.Rows[0])
	assert.Equal(t, "-", data.Rows[1][3])
	assert.Equal(t, differ.ReasonNoMapping, data.Rows[1][4])
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}

func TestOutcomesToTableData(t *testing.T) {
	data := OutcomesToTableData([]pkgsync.Outcome{
		{Type: differ.OperationAdd, Title: "Bleach", Status: pkgsync.OutcomeFailed, Error: "boom"},
		{Type: differ.OperationSkip, Title: "Other", Status: pkgsync.OutcomeSkipped, Reason: "no mapping"},
	})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, emoji.Error, data.Rows[0][0])
	assert.Equal(t, "boom", data.Rows[0][4])
	assert.Equal(t, emoji.Optional, data.Rows[1][0])
}

func TestHistoryToTableData(t *testing.T) {
	data := HistoryToTableData([]pkgsync.Result{
		{ID: "a", Successful: 2},
		{ID: "b", Failed: 1},
		{ID: "c", Aborted: true},
	})
	require.Len(t, data.Rows, 3)
	assert.Equal(t, emoji.Success, data.Rows[0][0])
	assert.Equal(t, emoji.Error, data.Rows[1][0])
	assert.Equal(t, emoji.Warning, data.Rows[2][0])
	assert.Equal(t, "-", data.Rows[0][3])

	assert.Empty(t, HistoryToTableData(nil).Rows)
}

func TestMappingsToTableData(t *testing.T) {
	data := MappingsToTableData([]catalogs.Mapping{{Title: "Naruto", TraktID: "naruto", MALID: "20", Method: "fuzzy", Confidence: 0.95}})
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "0.95", data.Rows[0][4])
}

func TestListResultToTableData(t *testing.T) {
	data := ListResultToTableData(&watchsync.ListResult{ListID: "anime", ListName: "Anime", Added: 2, Unresolved: []string{"A", "B"}})
	assert.Contains(t, data.Rows, []string{"Unresolved", "A, B"})
	assert.Contains(t, data.Rows, []string{"Added", "2"})
}
