package transport

import (
	"context"
	"net/http"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

// Authenticator applies an access token to a request.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request, string) {}

// BearerAuth sends the token as "Authorization: Bearer <token>".
type BearerAuth struct{}

// Apply implements Authenticator.
func (BearerAuth) Apply(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// HeaderAuth sends the token in a custom header.
type HeaderAuth struct {
	Header string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request, token string) {
	if token != "" && a.Header != "" {
		req.Header.Set(a.Header, token)
	}
}

// Tokens supplies and refreshes access tokens for a service.
type Tokens interface {
	AccessToken(ctx context.Context, s catalogs.Service) (string, error)
	IsExpired(ctx context.Context, s catalogs.Service) bool
	Refresh(ctx context.Context, s catalogs.Service) error
}

// StaticToken is a token that never expires, such as an API key.
type StaticToken string

// AccessToken implements Tokens.
func (t StaticToken) AccessToken(context.Context, catalogs.Service) (string, error) {
	return string(t), nil
}

// IsExpired implements Tokens.
func (t StaticToken) IsExpired(context.Context, catalogs.Service) bool {
	return t == ""
}

// Refresh implements Tokens. A static token cannot be refreshed.
func (t StaticToken) Refresh(context.Context, catalogs.Service) error {
	return nil
}
