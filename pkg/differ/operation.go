// Package differ decides which mutations bring a target catalog in line with
// the source catalog.
package differ

import (
	"fmt"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OperationAdd creates the entry on the target catalog.
	OperationAdd OperationType = "add"
	// OperationUpdate changes an existing target entry.
	OperationUpdate OperationType = "update"
	// OperationSkip is tallied without any network call.
	OperationSkip OperationType = "skip"
)

// Skip reasons.
const (
	ReasonNoMapping     = "no mapping"
	ReasonNotPropagated = "status not propagated"
)

// Operation is one prescribed mutation of the target catalog.
type Operation struct {
	Type    OperationType        `json:"type" yaml:"type"`
	Target  catalogs.Service     `json:"target" yaml:"target"`
	Pair    catalogs.PairedEntry `json:"pair" yaml:"pair"`
	Changes catalogs.Changes     `json:"changes" yaml:"changes"`
	Reason  string               `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Title returns the source entry title.
func (o Operation) Title() string {
	return o.Pair.Source.Title
}

// TargetID returns the identifier of the entry the operation mutates.
func (o Operation) TargetID() string {
	return o.Pair.TargetID
}

// Mutation converts the operation into the gateway request.
func (o Operation) Mutation() catalogs.Mutation {
	kind := catalogs.MutationUpdate
	if o.Type == OperationAdd {
		kind = catalogs.MutationAdd
	}
	return catalogs.Mutation{
		Kind:     kind,
		TargetID: o.Pair.TargetID,
		Source:   o.Pair.Source,
		Current:  o.Pair.Target,
		Changes:  o.Changes,
	}
}

// String renders the operation for logs.
func (o Operation) String() string {
	switch o.Type {
	case OperationSkip:
		return fmt.Sprintf("skip %q: %s", o.Title(), o.Reason)
	default:
		return fmt.Sprintf("%s %q on %s: %s", o.Type, o.Title(), o.Target, o.Changes)
	}
}

// Summary counts operations by type.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Adds    int `json:"adds" yaml:"adds"`
	Updates int `json:"updates" yaml:"updates"`
	Skips   int `json:"skips" yaml:"skips"`
}

// Summarize counts ops by type.
func Summarize(ops []Operation) Summary {
	s := Summary{Total: len(ops)}
	for _, op := range ops {
		switch op.Type {
		case OperationAdd:
			s.Adds++
		case OperationUpdate:
			s.Updates++
		case OperationSkip:
			s.Skips++
		}
	}
	return s
}

// String returns a one-line summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d operations: %d to add, %d to update, %d skipped", s.Total, s.Adds, s.Updates, s.Skips)
}

// HasChanges reports whether any operation needs a network call.
func (s Summary) HasChanges() bool {
	return s.Adds+s.Updates > 0
}
