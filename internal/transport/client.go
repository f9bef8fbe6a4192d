// Package transport is the HTTP core shared by the catalog gateways. It owns
// authentication, rate limiting, the single refresh-and-retry on 401 and the
// response cache.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/throttle"
)

const (
	userAgent    = "watchsync"
	maxErrorBody = 200 // runes
)

// Config configures a Client for one service.
type Config struct {
	Service    catalogs.Service
	BaseURL    string
	Headers    map[string]string // sent with every request
	Auth       Authenticator     // defaults to BearerAuth
	Tokens     Tokens            // nil sends requests unauthenticated
	Throttle   *throttle.Throttle
	Cache      store.Store
	CacheStore string        // store name for cached responses
	CacheTTL   time.Duration // defaults to constants.ResponseTTL
	HTTPClient *http.Client
}

// Client is an authenticated, throttled HTTP client for one catalog service.
type Client struct {
	service    catalogs.Service
	baseURL    string
	headers    map[string]string
	auth       Authenticator
	tokens     Tokens
	throttle   *throttle.Throttle
	cache      store.Store
	cacheStore string
	cacheTTL   time.Duration
	http       *http.Client
}

// New creates a new transport client.
func New(cfg Config) *Client {
	c := &Client{
		service:    cfg.Service,
		baseURL:    cfg.BaseURL,
		headers:    cfg.Headers,
		auth:       cfg.Auth,
		tokens:     cfg.Tokens,
		throttle:   cfg.Throttle,
		cache:      cfg.Cache,
		cacheStore: cfg.CacheStore,
		cacheTTL:   cfg.CacheTTL,
		http:       cfg.HTTPClient,
	}
	if c.auth == nil {
		c.auth = BearerAuth{}
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = constants.ResponseTTL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return c
}

// Service returns the service this client talks to.
func (c *Client) Service() catalogs.Service {
	return c.service
}

// Do sends a request. A missing token fails before any network call. An
// expired token is refreshed first, and a 401 triggers one refresh and
// retry unless a refresh already happened during this call.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx = logging.WithService(ctx, string(c.service))
	logger := logging.FromContext(ctx).With().
		Str("method", req.Method).
		Str("path", req.Path).
		Logger()

	token, refreshed, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	for {
		resp, err := c.send(ctx, req, token)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && !refreshed {
			logger.Debug().Msg("Access token rejected, refreshing")
			if err := c.tokens.Refresh(ctx, c.service); err != nil {
				return nil, err
			}
			refreshed = true
			if token, err = c.tokens.AccessToken(ctx, c.service); err != nil {
				return nil, errors.NewAuthError(string(c.service), "failed to load refreshed token", err)
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			logger.Debug().Int("status", resp.StatusCode).Msg("Request failed")
			return nil, &errors.UpstreamError{
				Service:    string(c.service),
				StatusCode: resp.StatusCode,
				Message:    errorMessage(resp.Body, resp.StatusCode),
				Endpoint:   req.Path,
				RetryAfter: retryAfter(resp.Header),
			}
		}
		return resp, nil
	}
}

// Send performs a request and decodes the response body into out when out is non-nil.
func (c *Client) Send(ctx context.Context, req Request, out any) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.Decode(out); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*Response, error) {
	return c.Send(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) token(ctx context.Context) (token string, refreshed bool, err error) {
	if c.tokens == nil {
		return "", false, nil
	}
	if token, err = c.tokens.AccessToken(ctx, c.service); err != nil {
		return "", false, errors.NewAuthError(string(c.service), "failed to load token", err)
	}
	if token == "" {
		return "", false, errors.NewAuthError(string(c.service), "not connected, run 'watchsync auth import'", nil)
	}
	if !c.tokens.IsExpired(ctx, c.service) {
		return token, false, nil
	}

	if err := c.tokens.Refresh(ctx, c.service); err != nil {
		return "", false, err
	}
	if token, err = c.tokens.AccessToken(ctx, c.service); err != nil {
		return "", false, errors.NewAuthError(string(c.service), "failed to load refreshed token", err)
	}
	return token, true, nil
}

// send performs one throttled round trip and reads the whole body.
func (c *Client) send(ctx context.Context, req Request, token string) (*Response, error) {
	hreq, err := c.build(req, token)
	if err != nil {
		return nil, err
	}

	var resp *Response
	err = c.throttle.Schedule(ctx, func(ctx context.Context) error {
		hresp, err := c.http.Do(hreq.WithContext(ctx))
		if err != nil {
			return err
		}
		defer func() { _ = hresp.Body.Close() }()

		body, err := io.ReadAll(hresp.Body)
		if err != nil {
			return errors.WrapIO("read", "response body", err)
		}
		resp = &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: body}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapUpstream(string(c.service), 0, err)
	}
	return resp, nil
}

// Cached returns the cached value for key when present, otherwise calls fetch
// to fill out and caches the result. Only reads go through the cache.
func (c *Client) Cached(ctx context.Context, key string, out any, fetch func(context.Context) error) error {
	if c.cache == nil || c.cacheStore == "" || key == "" {
		return fetch(ctx)
	}
	logger := logging.FromContext(ctx).With().Str("store", c.cacheStore).Str("key", key).Logger()

	rec, err := c.cache.Get(ctx, c.cacheStore, key)
	switch {
	case err == nil:
		if derr := rec.Decode(out); derr == nil {
			logger.Debug().Msg("Cache hit")
			return nil
		}
		logger.Debug().Msg("Discarding undecodable cache record")
	case !errors.IsNotFound(err):
		logger.Warn().Err(err).Msg("Cache read failed")
	}

	if err := fetch(ctx); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, c.cacheStore, key, out, c.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Cache write failed")
	}
	return nil
}

// Invalidate removes cached responses.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil || c.cacheStore == "" {
		return
	}
	for _, key := range keys {
		if err := c.cache.Remove(ctx, c.cacheStore, key); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Cache invalidation failed")
		}
	}
}

// InvalidateAll clears every cached response of this client's cache store.
func (c *Client) InvalidateAll(ctx context.Context) {
	if c.cache == nil || c.cacheStore == "" {
		return
	}
	if err := c.cache.Clear(ctx, c.cacheStore); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("store", c.cacheStore).Msg("Cache reset failed")
	}
}
