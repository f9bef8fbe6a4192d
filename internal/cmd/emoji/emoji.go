// Package emoji provides symbol constants for CLI output.
package emoji

import (
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// Symbols used for status columns and progress lines.
const (
	// Success marks applied operations and connected services.
	Success = "✓"

	// Error marks failed operations and missing tokens.
	Error = "✗"

	// Warning marks expired tokens and aborted runs.
	Warning = "!"

	// Optional marks skipped operations.
	Optional = "-"

	// Unknown marks unrecognized states.
	Unknown = "?"

	// Info prefixes informational lines.
	Info = "i"
)

// ForOutcome returns the symbol for an operation outcome.
func ForOutcome(status pkgsync.OutcomeStatus) string {
	switch status {
	case pkgsync.OutcomeSuccess:
		return Success
	case pkgsync.OutcomeFailed:
		return Error
	case pkgsync.OutcomeSkipped:
		return Optional
	default:
		return Unknown
	}
}
