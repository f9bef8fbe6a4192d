// Package hints provides actionable user guidance for CLI errors.
package hints

import (
	"fmt"
	"strings"

	"github.com/agentstation/watchsync/pkg/errors"
)

// Hint represents actionable user guidance.
type Hint struct {
	Message string // Human-readable guidance message
	Command string // Optional specific command to run
}

// New creates a new hint with the given message.
func New(message string) *Hint {
	return &Hint{Message: message}
}

// WithCommand adds a command to the hint.
func (h *Hint) WithCommand(command string) *Hint {
	h.Command = command
	return h
}

// String returns a string representation of the hint.
func (h *Hint) String() string {
	parts := []string{"Hint: " + h.Message}
	if h.Command != "" {
		parts = append(parts, "  Run: "+h.Command)
	}
	return strings.Join(parts, "\n")
}

// ForError returns guidance for a failed command, or nil when there is none.
func ForError(err error) *Hint {
	if err == nil {
		return nil
	}

	var authErr *errors.AuthError
	if errors.As(err, &authErr) {
		return New(fmt.Sprintf("Store a fresh %s token", authErr.Service)).
			WithCommand(fmt.Sprintf("watchsync auth import %s --file token.json", authErr.Service))
	}

	var cfgErr *errors.ConfigError
	if errors.As(err, &cfgErr) && strings.Contains(cfgErr.Message, "Trakt is not configured") {
		return New("Set your Trakt API client id in ~/.watchsync.yaml (trakt.client_id) or TRAKT_CLIENT_ID")
	}

	switch {
	case errors.IsUnauthorized(err):
		return New("The service rejected the stored token").WithCommand("watchsync auth status")
	case errors.IsRateLimited(err):
		wait := "a few minutes"
		if d := errors.RetryAfter(err); d > 0 {
			wait = d.String()
		}
		return New(fmt.Sprintf("Rate limit reached, wait %s and run again. Cached responses are reused on the next run.", wait))
	case errors.IsUpstreamUnavailable(err):
		return New("The catalog service is unavailable, nothing was changed. Try again later.")
	}
	return nil
}
