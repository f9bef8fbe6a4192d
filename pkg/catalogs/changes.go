package catalogs

import (
	"fmt"
	"strings"
)

// Change is a single field delta.
type Change[T comparable] struct {
	From T `json:"from" yaml:"from"`
	To   T `json:"to" yaml:"to"`
}

// String renders the change as "from -> to".
func (c Change[T]) String() string {
	return fmt.Sprintf("%v -> %v", c.From, c.To)
}

// Changes is a sparse field delta: only fields that differ from the
// target's current state are set.
type Changes struct {
	Status   *Change[Status] `json:"status,omitempty" yaml:"status,omitempty"`
	Episodes *Change[int]    `json:"episodes,omitempty" yaml:"episodes,omitempty"`
	Score    *Change[int]    `json:"score,omitempty" yaml:"score,omitempty"`
}

// IsEmpty reports whether no field changes.
func (c Changes) IsEmpty() bool {
	return c.Status == nil && c.Episodes == nil && c.Score == nil
}

// Fields returns the names of the changed fields in a stable order.
func (c Changes) Fields() []string {
	var fields []string
	if c.Status != nil {
		fields = append(fields, "status")
	}
	if c.Episodes != nil {
		fields = append(fields, "episodes")
	}
	if c.Score != nil {
		fields = append(fields, "score")
	}
	return fields
}

// String renders the changes for display, e.g. "status: planned -> watching, episodes: 0 -> 50".
func (c Changes) String() string {
	parts := make([]string, 0, 3)
	if c.Status != nil {
		parts = append(parts, "status: "+c.Status.String())
	}
	if c.Episodes != nil {
		parts = append(parts, "episodes: "+c.Episodes.String())
	}
	if c.Score != nil {
		parts = append(parts, "score: "+c.Score.String())
	}
	return strings.Join(parts, ", ")
}

// MutationKind distinguishes creating a target entry from updating one.
type MutationKind string

// Mutation kinds.
const (
	MutationAdd    MutationKind = "add"
	MutationUpdate MutationKind = "update"
)

// Mutation is what a gateway applies to its catalog for one operation.
type Mutation struct {
	Kind     MutationKind `json:"kind" yaml:"kind"`
	TargetID string       `json:"target_id" yaml:"target_id"`
	Source   Entry        `json:"source" yaml:"source"`
	Current  *Entry       `json:"current,omitempty" yaml:"current,omitempty"`
	Changes  Changes      `json:"changes" yaml:"changes"`
}
