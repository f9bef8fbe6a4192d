// Package auth holds OAuth tokens for the catalog services and refreshes them.
// It does not implement the authorization flow itself: tokens are imported
// once and then kept alive with their refresh tokens.
package auth

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

// State represents the authentication state of a service.
type State int

const (
	// StateConnected means a live access token is stored.
	StateConnected State = iota
	// StateExpired means the access token expired but can be refreshed.
	StateExpired
	// StateMissing means no token is stored.
	StateMissing
	// StateInvalid means the stored token can neither be used nor refreshed.
	StateInvalid
)

// String returns a display name for the state.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateExpired:
		return "expired"
	case StateMissing:
		return "missing"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Status describes the token state of one service. Checks are local only.
type Status struct {
	Service       catalogs.Service `json:"service" yaml:"service"`
	State         State            `json:"-" yaml:"-"`
	StateName     string           `json:"state" yaml:"state"`
	Summary       string           `json:"summary" yaml:"summary"`
	ExpiresAt     *utc.Time        `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	CanRefresh    bool             `json:"can_refresh" yaml:"can_refresh"`
	HasClientAuth bool             `json:"has_client_credentials" yaml:"has_client_credentials"`
}

// Credentials are the OAuth client settings of one service.
type Credentials struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	TokenURL     string `mapstructure:"token_url" yaml:"token_url"`
}

// Default token endpoints.
const (
	TraktTokenURL = "https://api.trakt.tv/oauth/token"
	MALTokenURL   = "https://myanimelist.net/v1/oauth2/token"
)
