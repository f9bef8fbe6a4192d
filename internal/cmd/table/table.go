// Package table converts watchsync values into rows for the table formatter.
package table

// Align represents column alignment.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Data represents table data for rendering.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
	Empty           string // printed instead of an empty table
}
