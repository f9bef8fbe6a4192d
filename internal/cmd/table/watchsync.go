package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

const timeLayout = "2006-01-02 15:04:05"

// OperationsToTableData converts a plan's operations to table data.
func OperationsToTableData(ops []differ.Operation) Data {
	rows := make([][]string, 0, len(ops))
	for i, op := range ops {
		detail := op.Changes.String()
		if op.Type == differ.OperationSkip {
			detail = op.Reason
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(op.Type),
			op.Title(),
			dash(op.TargetID()),
			dash(detail),
		})
	}
	return Data{
		Headers:         []string{"#", "Action", "Title", "Target ID", "Changes"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
		Empty:           "Nothing to sync.",
	}
}

// OutcomesToTableData converts the outcomes of a run to table data.
func OutcomesToTableData(outcomes []pkgsync.Outcome) Data {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := o.Changes.String()
		switch {
		case o.Error != "":
			detail = o.Error
		case o.Status == pkgsync.OutcomeSkipped:
			detail = o.Reason
		}
		rows = append(rows, []string{
			emoji.ForOutcome(o.Status),
			string(o.Type),
			o.Title,
			dash(o.TargetID),
			dash(detail),
		})
	}
	return Data{
		Headers: []string{"", "Action", "Title", "Target ID", "Result"},
		Rows:    rows,
		Empty:   "No operations.",
	}
}

// HistoryToTableData converts run results to table data.
func HistoryToTableData(results []pkgsync.Result) Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := emoji.Success
		switch {
		case r.Aborted:
			state = emoji.Warning
		case r.Failed > 0:
			state = emoji.Error
		}
		rows = append(rows, []string{
			state,
			r.ID,
			dash(string(r.Direction)),
			formatTime(r.StartedAt),
			r.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(r.Successful),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		})
	}
	return Data{
		Headers:         []string{"", "Run", "Direction", "Started", "Duration", "OK", "Failed", "Skipped"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
		Empty:           "No sync runs recorded.",
	}
}

// MappingsToTableData converts identity mappings to table data.
func MappingsToTableData(mappings []catalogs.Mapping) Data {
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		confidence := "-"
		if m.Confidence > 0 {
			confidence = fmt.Sprintf("%.2f", m.Confidence)
		}
		rows = append(rows, []string{
			m.Title,
			m.TraktID,
			m.MALID,
			dash(m.Method),
			confidence,
			formatTime(m.ExpiresAt),
		})
	}
	return Data{
		Headers:         []string{"Title", "Trakt", "MAL", "Method", "Confidence", "Expires"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
		Empty:           "No mappings.",
	}
}

// AuthStatusToTableData converts token states to table data.
func AuthStatusToTableData(statuses []*auth.Status) Data {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		symbol := emoji.Unknown
		switch s.State {
		case auth.StateConnected:
			symbol = emoji.Success
		case auth.StateExpired:
			symbol = emoji.Warning
		case auth.StateMissing, auth.StateInvalid:
			symbol = emoji.Error
		}
		expires := "-"
		if s.ExpiresAt != nil {
			expires = formatTime(*s.ExpiresAt)
		}
		rows = append(rows, []string{
			symbol,
			s.Service.DisplayName(),
			s.StateName,
			expires,
			s.Summary,
		})
	}
	return Data{
		Headers: []string{"", "Service", "State", "Expires", "Details"},
		Rows:    rows,
	}
}

// ListResultToTableData converts a list push result to table data.
func ListResultToTableData(r *watchsync.ListResult) Data {
	rows := [][]string{
		{"List", fmt.Sprintf("%s (%s)", r.ListName, r.ListID)},
		{"Created", strconv.FormatBool(r.Created)},
		{"Candidates", strconv.Itoa(r.Candidates)},
		{"Already present", strconv.Itoa(r.Present)},
		{"Added", strconv.Itoa(r.Added)},
		{"Unresolved", dash(strings.Join(r.Unresolved, ", "))},
	}
	if r.Error != "" {
		rows = append(rows, []string{"Error", r.Error})
	}
	return Data{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}
}

func formatTime(t utc.Time) string {
	if t.Time.IsZero() {
		return "-"
	}
	return t.Time.Local().Format(timeLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
