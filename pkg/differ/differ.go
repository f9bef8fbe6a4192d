package differ

import (
	"github.com/agentstation/watchsync/pkg/catalogs"
)

// StatusTable maps a source status to the status written to the target.
// A status missing from the table has no equivalent and is not propagated.
type StatusTable map[catalogs.Status]catalogs.Status

// DefaultStatusTables returns the per-direction tables. They are not
// inverses of each other: Trakt has no on-hold or dropped state, so MAL
// on_hold is written as watching and MAL dropped is not written at all.
func DefaultStatusTables() map[catalogs.Direction]StatusTable {
	return map[catalogs.Direction]StatusTable{
		catalogs.TraktToMAL: {
			catalogs.StatusWatching:  catalogs.StatusWatching,
			catalogs.StatusCompleted: catalogs.StatusCompleted,
			catalogs.StatusPlanned:   catalogs.StatusPlanned,
		},
		catalogs.MALToTrakt: {
			catalogs.StatusWatching:  catalogs.StatusWatching,
			catalogs.StatusCompleted: catalogs.StatusCompleted,
			catalogs.StatusPlanned:   catalogs.StatusPlanned,
			catalogs.StatusOnHold:    catalogs.StatusWatching,
		},
	}
}

// DefaultProgressStatuses returns, per direction, the target statuses that
// the target catalog derives from watched episodes and cannot store on their
// own. Trakt shows are "watching" only because episodes are in the history.
func DefaultProgressStatuses() map[catalogs.Direction]map[catalogs.Status]bool {
	return map[catalogs.Direction]map[catalogs.Status]bool{
		catalogs.MALToTrakt: {catalogs.StatusWatching: true},
	}
}

// Differ computes operations from paired entries.
type Differ interface {
	// Diff returns the operations for pairs in input order. It performs no I/O
	// and returns the same result for the same input.
	Diff(pairs []catalogs.PairedEntry, dir catalogs.Direction) []Operation

	// Project maps a source status through the direction's table.
	Project(dir catalogs.Direction, status catalogs.Status) catalogs.Status
}

// differ is the default implementation of Differ.
type differ struct {
	scores   bool
	tables   map[catalogs.Direction]StatusTable
	progress map[catalogs.Direction]map[catalogs.Status]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{tables: DefaultStatusTables(), progress: DefaultProgressStatuses()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Project implements Differ.
func (d *differ) Project(dir catalogs.Direction, status catalogs.Status) catalogs.Status {
	return d.tables[dir][status]
}

// Diff implements Differ.
func (d *differ) Diff(pairs []catalogs.PairedEntry, dir catalogs.Direction) []Operation {
	ops := make([]Operation, 0, len(pairs))
	target := dir.Target()

	for _, p := range pairs {
		op := Operation{Target: target, Pair: p}

		switch {
		case !p.Resolved:
			op.Type, op.Reason = OperationSkip, ReasonNoMapping
		case p.Target == nil:
			d.add(&op, dir)
		default:
			if !d.update(&op, dir) {
				continue
			}
		}
		ops = append(ops, op)
	}
	return ops
}

func (d *differ) add(op *Operation, dir catalogs.Direction) {
	src := op.Pair.Source
	status := d.Project(dir, src.Status)
	if status == catalogs.StatusNone || (d.progress[dir][status] && src.EpisodesWatched == 0) {
		op.Type, op.Reason = OperationSkip, ReasonNotPropagated
		return
	}

	op.Type = OperationAdd
	op.Changes.Status = &catalogs.Change[catalogs.Status]{From: catalogs.StatusNone, To: status}
	if src.EpisodesWatched > 0 {
		op.Changes.Episodes = &catalogs.Change[int]{From: 0, To: src.EpisodesWatched}
	}
	if src.Score > 0 {
		op.Changes.Score = &catalogs.Change[int]{From: 0, To: src.Score}
	}
}

// update fills the field delta and reports whether an operation is emitted.
// Progress never regresses. A status without an equivalent leaves the
// target status untouched. A progress-derived status without new episodes
// cannot be written and yields a skip when nothing else changes.
func (d *differ) update(op *Operation, dir catalogs.Direction) bool {
	src, cur := op.Pair.Source, op.Pair.Target

	if src.EpisodesWatched > cur.EpisodesWatched {
		op.Changes.Episodes = &catalogs.Change[int]{From: cur.EpisodesWatched, To: src.EpisodesWatched}
	}
	if d.scores && src.Score > 0 && src.Score != cur.Score {
		op.Changes.Score = &catalogs.Change[int]{From: cur.Score, To: src.Score}
	}

	unwritable := false
	if status := d.Project(dir, src.Status); status != catalogs.StatusNone && status != cur.Status {
		if d.progress[dir][status] && op.Changes.Episodes == nil {
			unwritable = true
		} else {
			op.Changes.Status = &catalogs.Change[catalogs.Status]{From: cur.Status, To: status}
		}
	}

	switch {
	case !op.Changes.IsEmpty():
		op.Type = OperationUpdate
	case unwritable:
		op.Type, op.Reason = OperationSkip, ReasonNotPropagated
	default:
		return false
	}
	return true
}
