package sync

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/differ"
)

// OutcomeStatus is the result of one operation.
type OutcomeStatus string

const (
	// OutcomeSuccess means the gateway applied the mutation.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeFailed means the mutation returned an error.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped means the operation was tallied without a network call.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome records what happened to one operation.
type Outcome struct {
	Index    int                  `json:"index" yaml:"index"`
	Type     differ.OperationType `json:"type" yaml:"type"`
	Target   catalogs.Service     `json:"target" yaml:"target"`
	Title    string               `json:"title" yaml:"title"`
	SourceID string               `json:"source_id" yaml:"source_id"`
	TargetID string               `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Changes  catalogs.Changes     `json:"changes" yaml:"changes"`
	Status   OutcomeStatus        `json:"status" yaml:"status"`
	Reason   string               `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error    string               `json:"error,omitempty" yaml:"error,omitempty"`
}

func newOutcome(i int, op differ.Operation) Outcome {
	return Outcome{
		Index:    i,
		Type:     op.Type,
		Target:   op.Target,
		Title:    op.Title(),
		SourceID: op.Pair.Source.NativeID,
		TargetID: op.TargetID(),
		Changes:  op.Changes,
		Reason:   op.Reason,
	}
}

// Progress is passed to the progress callback after every operation.
type Progress struct {
	Completed int
	Total     int
	Operation differ.Operation
	Outcome   Outcome
}

// Percent returns the completed share in the range 0-100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Completed) * 100 / float64(p.Total)
}

// Result is the persisted summary of one run.
type Result struct {
	ID         string             `json:"id" yaml:"id"`
	Direction  catalogs.Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	StartedAt  utc.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time           `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration      `json:"duration" yaml:"duration"`
	Total      int                `json:"total" yaml:"total"`
	Successful int                `json:"successful" yaml:"successful"`
	Failed     int                `json:"failed" yaml:"failed"`
	Skipped    int                `json:"skipped" yaml:"skipped"`
	Aborted    bool               `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Outcomes   []Outcome          `json:"outcomes" yaml:"outcomes"`
}

func (r *Result) record(o Outcome) {
	switch o.Status {
	case OutcomeSuccess:
		r.Successful++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Processed returns how many operations were consumed before the run ended.
func (r *Result) Processed() int {
	return r.Successful + r.Failed + r.Skipped
}

// Failures returns the failed outcomes.
func (r *Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d successful, %d failed, %d skipped", r.Successful, r.Failed, r.Skipped)
	if r.Aborted {
		s += fmt.Sprintf(" (aborted after %d of %d)", r.Processed(), r.Total)
	}
	return s
}
