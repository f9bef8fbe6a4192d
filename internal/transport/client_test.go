package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store/memory"
	"github.com/agentstation/watchsync/pkg/throttle"
)

type fakeTokens struct {
	mu         sync.Mutex
	token      string
	next       string
	expired    bool
	refreshes  int
	refreshErr error
}

func (f *fakeTokens) AccessToken(context.Context, catalogs.Service) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeTokens) IsExpired(context.Context, catalogs.Service) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token == "" || f.expired
}

func (f *fakeTokens) Refresh(context.Context, catalogs.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token, f.expired = f.next, false
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens Tokens) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		Service: catalogs.ServiceTrakt,
		BaseURL: srv.URL,
		Headers: map[string]string{"trakt-api-version": "2"},
		Tokens:  tokens,
	})
}

func TestDoAppliesHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.Header.Get("trakt-api-version"))
		assert.Equal(t, "/users/me/watched/shows", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("extended"))
		_, _ = w.Write([]byte(`[{"title":"Naruto"}]`))
	}, &fakeTokens{token: "abc"})

	var out []struct {
		Title string `json:"title"`
	}
	_, err := client.Get(context.Background(), "/users/me/watched/shows", url.Values{"extended": {"full"}}, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Naruto", out[0].Title)
}

func TestDoMissingTokenFailsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, &fakeTokens{})

	_, err := client.Do(context.Background(), Request{Path: "/shows/naruto"})
	var authErr *errors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "trakt", authErr.Service)
	assert.Zero(t, hits.Load())
}

func TestDoRefreshesExpiredToken(t *testing.T) {
	tokens := &fakeTokens{token: "old", next: "new", expired: true}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer new", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}, tokens)

	_, err := client.Do(context.Background(), Request{Path: "/shows/naruto"})
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.refreshes)
}

func TestDoRetriesOnceAfter401(t *testing.T) {
	tokens := &fakeTokens{token: "stale", next: "fresh"}
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, tokens)

	var out struct {
		OK bool `json:"ok"`
	}
	_, err := client.Send(context.Background(), Request{Path: "/sync/history"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 1, tokens.refreshes)
}

func TestDoSecond401IsHardFailure(t *testing.T) {
	tokens := &fakeTokens{token: "stale", next: "still-bad"}
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	_, err := client.Do(context.Background(), Request{Path: "/sync/history"})
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))

	var upErr *errors.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 1, tokens.refreshes)
}

func TestDoNoRetryAfterPreflightRefresh(t *testing.T) {
	tokens := &fakeTokens{token: "old", next: "new", expired: true}
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	_, err := client.Do(context.Background(), Request{Path: "/sync/history"})
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, tokens.refreshes)
}

func TestDoRefreshFailure(t *testing.T) {
	tokens := &fakeTokens{token: "stale", refreshErr: errors.NewAuthError("trakt", "token refresh failed", nil)}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	_, err := client.Do(context.Background(), Request{Path: "/sync/history"})
	var authErr *errors.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestDoUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}, nil)

	_, err := client.Do(context.Background(), Request{Path: "/shows/naruto"})
	var upErr *errors.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "maintenance", upErr.Message)
	assert.Equal(t, "/shows/naruto", upErr.Endpoint)
	assert.True(t, errors.IsUpstreamUnavailable(err))
	assert.Zero(t, upErr.RetryAfter)
}

func TestErrorMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := []byte(strings.Repeat("進撃", maxErrorBody))

	msg := errorMessage(body, http.StatusBadRequest)
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("進撃", maxErrorBody/2)+"...", msg)

	assert.Equal(t, "Bad Gateway", errorMessage(nil, http.StatusBadGateway))
	assert.Equal(t, "invalid_grant", errorMessage([]byte(`{"error":"invalid_grant"}`), http.StatusBadRequest))
}

func TestDoRateLimitedCarriesRetryAfter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := client.Do(context.Background(), Request{Path: "/sync/watched/shows"})
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, 20*time.Second, errors.RetryAfter(err))
}

func TestRequestBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.Method {
		case http.MethodPatch:
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.Equal(t, "num_watched_episodes=50&status=watching", string(body))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.JSONEq(t, `{"shows":[]}`, string(body))
		}
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	ctx := context.Background()
	_, err := client.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/anime/20/my_list_status",
		Form:   url.Values{"status": {"watching"}, "num_watched_episodes": {"50"}},
	})
	require.NoError(t, err)

	_, err = client.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/sync/history",
		JSON:   map[string]any{"shows": []any{}},
	}, &struct{}{})
	require.NoError(t, err)
}

func TestDoUsesThrottle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	th := throttle.New(10, time.Minute, throttle.WithSpacing(0), throttle.WithBuffer(0))
	client := New(Config{Service: catalogs.ServiceMAL, BaseURL: srv.URL, Throttle: th})

	for range 3 {
		_, err := client.Do(context.Background(), Request{Path: "/anime/1"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, th.Stats().Started)
}

func TestCached(t *testing.T) {
	var hits atomic.Int32
	client := New(Config{
		Service:    catalogs.ServiceMAL,
		BaseURL:    "http://unused",
		Cache:      memory.New(time.Minute),
		CacheStore: "mal_cache",
	})
	ctx := context.Background()

	fetch := func(out *[]string) func(context.Context) error {
		return func(context.Context) error {
			hits.Add(1)
			*out = []string{"Naruto", "Bleach"}
			return nil
		}
	}

	var first, second []string
	require.NoError(t, client.Cached(ctx, "@me-all-0", &first, fetch(&first)))
	require.NoError(t, client.Cached(ctx, "@me-all-0", &second, fetch(&second)))
	assert.Equal(t, []string{"Naruto", "Bleach"}, second)
	assert.Equal(t, int32(1), hits.Load())

	client.Invalidate(ctx, "@me-all-0")
	var third []string
	require.NoError(t, client.Cached(ctx, "@me-all-0", &third, fetch(&third)))
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	cache := memory.New(time.Minute)
	client := New(Config{Service: catalogs.ServiceMAL, Cache: cache, CacheStore: "mal_cache"})
	ctx := context.Background()

	var out []string
	err := client.Cached(ctx, "k", &out, func(context.Context) error {
		return errors.NewUpstreamError("mal", http.StatusBadGateway, "bad gateway")
	})
	require.Error(t, err)

	_, err = cache.Get(ctx, "mal_cache", "k")
	assert.True(t, errors.IsNotFound(err))
}

func TestAuthenticators(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	NoAuth{}.Apply(req, "tok")
	assert.Empty(t, req.Header.Get("Authorization"))

	BearerAuth{}.Apply(req, "tok")
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	HeaderAuth{Header: "X-API-Key"}.Apply(req, "key")
	assert.Equal(t, "key", req.Header.Get("X-API-Key"))

	tok := StaticToken("key")
	assert.False(t, tok.IsExpired(context.Background(), catalogs.ServiceMAL))
	assert.True(t, StaticToken("").IsExpired(context.Background(), catalogs.ServiceMAL))
}
