package differ

import "github.com/agentstation/watchsync/pkg/catalogs"

// Option is a functional option for configuring Differ
type Option func(*differ)

// WithScores includes score deltas on updates. Adds always carry the score.
func WithScores(enabled bool) Option {
	return func(d *differ) {
		d.scores = enabled
	}
}

// WithStatusTable replaces the status table of one direction.
func WithStatusTable(dir catalogs.Direction, table StatusTable) Option {
	return func(d *differ) {
		d.tables[dir] = table
	}
}
