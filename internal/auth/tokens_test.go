package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store/memory"
)

func tokenServer(t *testing.T, calls *atomic.Int32, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-123", r.PostForm.Get("client_id"))

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"token_type":    "Bearer",
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newManager(t *testing.T, tokenURL string) *Manager {
	t.Helper()
	return NewManager(memory.New(time.Minute), map[catalogs.Service]Credentials{
		catalogs.ServiceMAL: {ClientID: "client-123", TokenURL: tokenURL},
	})
}

func TestManagerRefresh(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	srv := tokenServer(t, &calls, http.StatusOK)
	m := newManager(t, srv.URL)

	require.NoError(t, m.Save(ctx, catalogs.ServiceMAL, &oauth2.Token{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		Expiry:       time.Now().Add(-time.Minute),
	}))
	assert.True(t, m.IsExpired(ctx, catalogs.ServiceMAL))

	require.NoError(t, m.Refresh(ctx, catalogs.ServiceMAL))
	assert.Equal(t, int32(1), calls.Load())

	access, err := m.AccessToken(ctx, catalogs.ServiceMAL)
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)
	assert.False(t, m.IsExpired(ctx, catalogs.ServiceMAL))

	tok, err := m.Token(ctx, catalogs.ServiceMAL)
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", tok.RefreshToken)
}

func TestManagerRefreshFailure(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	srv := tokenServer(t, &calls, http.StatusBadRequest)
	m := newManager(t, srv.URL)

	require.NoError(t, m.Save(ctx, catalogs.ServiceMAL, &oauth2.Token{AccessToken: "a", RefreshToken: "old-refresh"}))

	err := m.Refresh(ctx, catalogs.ServiceMAL)
	var authErr *errors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "mal", authErr.Service)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestManagerRefreshWithoutToken(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, "http://127.0.0.1:0")

	err := m.Refresh(ctx, catalogs.ServiceMAL)
	assert.True(t, errors.IsUnauthorized(err))

	access, err := m.AccessToken(ctx, catalogs.ServiceMAL)
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.True(t, m.IsExpired(ctx, catalogs.ServiceMAL))

	// No client configured for trakt.
	require.NoError(t, m.Save(ctx, catalogs.ServiceTrakt, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	err = m.Refresh(ctx, catalogs.ServiceTrakt)
	assert.ErrorContains(t, err, "no client id configured for Trakt")
}

func TestManagerStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(memory.New(time.Minute), map[catalogs.Service]Credentials{
		catalogs.ServiceMAL: {ClientID: "client-123"},
	}, WithClock(func() time.Time { return now }))

	assert.Equal(t, StateMissing, m.Status(ctx, catalogs.ServiceMAL).State)

	require.NoError(t, m.Save(ctx, catalogs.ServiceMAL, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(time.Hour)}))
	st := m.Status(ctx, catalogs.ServiceMAL)
	assert.Equal(t, StateConnected, st.State)
	assert.Equal(t, "connected", st.StateName)
	require.NotNil(t, st.ExpiresAt)
	assert.True(t, st.CanRefresh)

	require.NoError(t, m.Save(ctx, catalogs.ServiceMAL, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(-time.Hour)}))
	assert.Equal(t, StateExpired, m.Status(ctx, catalogs.ServiceMAL).State)

	require.NoError(t, m.Save(ctx, catalogs.ServiceTrakt, &oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Hour)}))
	assert.Equal(t, StateInvalid, m.Status(ctx, catalogs.ServiceTrakt).State)

	require.NoError(t, m.Remove(ctx, catalogs.ServiceTrakt))
	assert.Equal(t, StateMissing, m.Status(ctx, catalogs.ServiceTrakt).State)
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	m := newManager(t, "")
	err := m.Save(context.Background(), catalogs.ServiceMAL, &oauth2.Token{})
	assert.True(t, errors.IsValidationError(err))
}
