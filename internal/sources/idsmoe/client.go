// Package idsmoe provides a client for the ids.moe anime identifier
// cross-reference service.
package idsmoe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/watchsync/internal/transport"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/throttle"
)

// DefaultBaseURL is the ids.moe API root.
const DefaultBaseURL = "https://api.ids.moe"

// Platform names used by ids.moe.
const (
	PlatformMAL     = "myanimelist"
	PlatformTrakt   = "trakt"
	PlatformAniList = "anilist"
	PlatformKitsu   = "kitsu"
	PlatformTMDB    = "themoviedb"
	PlatformTVDB    = "thetvdb"
	PlatformIMDB    = "imdb"
)

// IDs maps platform names to identifiers. Numeric identifiers are rendered as strings.
type IDs map[string]string

// UnmarshalJSON accepts string, numeric and null values.
func (ids *IDs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(IDs, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				out[k] = s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			out[k] = n.String()
		}
	}
	*ids = out
	return nil
}

// Candidate is a title search result.
type Candidate struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
	IDs   IDs    `json:"ids"`
}

// Config configures an ids.moe client.
type Config struct {
	BaseURL    string
	APIKey     string
	Throttle   *throttle.Throttle
	Cache      store.Store
	HTTPClient *http.Client
}

// Client looks up cross-platform identifiers.
type Client struct {
	transport *transport.Client
	enabled   bool
}

// NewClient creates an ids.moe client. Without an API key every lookup fails
// with ErrNotImplemented.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New(transport.Config{
			Service:    "idsmoe",
			BaseURL:    cfg.BaseURL,
			Tokens:     transport.StaticToken(cfg.APIKey),
			Throttle:   cfg.Throttle,
			Cache:      cfg.Cache,
			CacheStore: store.IDsMoeCache,
			HTTPClient: cfg.HTTPClient,
		}),
		enabled: cfg.APIKey != "",
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// LookupBySource returns every known identifier of the title that has id on platform.
func (c *Client) LookupBySource(ctx context.Context, platform, id string) (map[string]string, error) {
	if !c.Enabled() {
		return nil, errors.ErrNotImplemented
	}
	var ids IDs
	err := c.transport.Cached(ctx, platform+"-"+id, &ids, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, "/ids/"+url.PathEscape(id), url.Values{"platform": {platform}}, &ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]string(ids), nil
}

// SearchByTitle returns candidates for a title.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]Candidate, error) {
	if !c.Enabled() {
		return nil, errors.ErrNotImplemented
	}
	var out []Candidate
	_, err := c.transport.Get(ctx, "/search", url.Values{
		"q":     {title},
		"limit": {strconv.Itoa(limit)},
	}, &out)
	return out, err
}
