package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agentstation/utc"
	"golang.org/x/oauth2"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// Manager stores tokens in the tokens store and refreshes them through the
// service's OAuth token endpoint.
type Manager struct {
	store   store.Store
	configs map[catalogs.Service]*oauth2.Config
	http    *http.Client
	now     func() time.Time

	// mu serializes refreshes so concurrent callers do not spend a refresh token twice.
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used to call token endpoints.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.http = c
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a token manager.
func NewManager(s store.Store, creds map[catalogs.Service]Credentials, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		configs: make(map[catalogs.Service]*oauth2.Config, len(creds)),
		now:     time.Now,
	}
	for svc, c := range creds {
		if c.ClientID == "" {
			continue
		}
		tokenURL := c.TokenURL
		if tokenURL == "" {
			tokenURL = defaultTokenURL(svc)
		}
		m.configs[svc] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultTokenURL(s catalogs.Service) string {
	if s == catalogs.ServiceMAL {
		return MALTokenURL
	}
	return TraktTokenURL
}

// Token returns the stored token, or nil when none is stored.
func (m *Manager) Token(ctx context.Context, s catalogs.Service) (*oauth2.Token, error) {
	tok, err := store.Load[oauth2.Token](ctx, m.store, store.Tokens, string(s))
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Save stores a token for the service.
func (m *Manager) Save(ctx context.Context, s catalogs.Service, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.NewValidationError("access_token", "", "token must carry an access token")
	}
	return m.store.Set(ctx, store.Tokens, string(s), tok, 0)
}

// Remove deletes the stored token of a service.
func (m *Manager) Remove(ctx context.Context, s catalogs.Service) error {
	return m.store.Remove(ctx, store.Tokens, string(s))
}

// AccessToken returns the stored access token, or "" when none is stored.
func (m *Manager) AccessToken(ctx context.Context, s catalogs.Service) (string, error) {
	tok, err := m.Token(ctx, s)
	if err != nil || tok == nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// IsExpired reports whether the service has no usable access token.
// A token without an expiry never expires.
func (m *Manager) IsExpired(ctx context.Context, s catalogs.Service) bool {
	tok, err := m.Token(ctx, s)
	if err != nil || tok == nil || tok.AccessToken == "" {
		return true
	}
	return m.expired(tok)
}

func (m *Manager) expired(tok *oauth2.Token) bool {
	return !tok.Expiry.IsZero() && !m.now().Before(tok.Expiry)
}

// Refresh exchanges the stored refresh token for a new token and stores it.
func (m *Manager) Refresh(ctx context.Context, s catalogs.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := logging.FromContext(ctx)

	tok, err := m.Token(ctx, s)
	if err != nil {
		return errors.NewAuthError(string(s), "failed to load token", err)
	}
	if tok == nil || tok.RefreshToken == "" {
		return errors.NewAuthError(string(s), "no refresh token stored, run 'watchsync auth import'", nil)
	}
	cfg, ok := m.configs[s]
	if !ok {
		return errors.NewAuthError(string(s), fmt.Sprintf("no client id configured for %s", s.DisplayName()), nil)
	}

	if m.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.http)
	}
	// An empty access token forces the token source to refresh.
	fresh, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		logger.Warn().Err(err).Msg("Token refresh failed")
		return errors.NewAuthError(string(s), "token refresh failed", err)
	}
	if err := m.Save(ctx, s, fresh); err != nil {
		return errors.NewAuthError(string(s), "failed to store refreshed token", err)
	}

	logger.Debug().
		Str("access_token", logging.Token(fresh.AccessToken)).
		Time("expiry", fresh.Expiry).
		Msg("Refreshed access token")
	return nil
}

// Status checks the token state of a service without network calls.
func (m *Manager) Status(ctx context.Context, s catalogs.Service) *Status {
	st := &Status{Service: s}
	_, st.HasClientAuth = m.configs[s]

	tok, err := m.Token(ctx, s)
	switch {
	case err != nil:
		st.State, st.Summary = StateInvalid, err.Error()
	case tok == nil || tok.AccessToken == "":
		st.State, st.Summary = StateMissing, "No token stored, run 'watchsync auth import'"
	default:
		st.CanRefresh = tok.RefreshToken != "" && st.HasClientAuth
		if !tok.Expiry.IsZero() {
			exp := utc.New(tok.Expiry)
			st.ExpiresAt = &exp
		}
		switch {
		case !m.expired(tok):
			st.State, st.Summary = StateConnected, "Access token valid"
		case st.CanRefresh:
			st.State, st.Summary = StateExpired, "Access token expired, will refresh on next call"
		default:
			st.State, st.Summary = StateInvalid, "Access token expired and cannot be refreshed"
		}
	}
	st.StateName = st.State.String()
	return st
}
