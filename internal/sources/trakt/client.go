// Package trakt provides a client for the Trakt API and its catalog gateway.
package trakt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/watchsync/internal/transport"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/throttle"
)

// DefaultBaseURL is the Trakt API root.
const DefaultBaseURL = "https://api.trakt.tv"

// APIVersion is sent in the trakt-api-version header.
const APIVersion = "2"

// Config configures a Trakt client.
type Config struct {
	BaseURL    string
	ClientID   string // sent as trakt-api-key
	Username   string // defaults to "me"
	Tokens     transport.Tokens
	Throttle   *throttle.Throttle
	Cache      store.Store
	HTTPClient *http.Client
}

// Client wraps the Trakt endpoints watchsync needs.
type Client struct {
	transport *transport.Client
	user      string
}

// NewClient creates a Trakt client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Username == "" {
		cfg.Username = "me"
	}
	return &Client{
		transport: transport.New(transport.Config{
			Service: catalogs.ServiceTrakt,
			BaseURL: cfg.BaseURL,
			Headers: map[string]string{
				"trakt-api-version": APIVersion,
				"trakt-api-key":     cfg.ClientID,
			},
			Tokens:     cfg.Tokens,
			Throttle:   cfg.Throttle,
			Cache:      cfg.Cache,
			CacheStore: store.TraktCache,
			HTTPClient: cfg.HTTPClient,
		}),
		user: cfg.Username,
	}
}

func (c *Client) userPath(format string, args ...any) string {
	return "/users/" + url.PathEscape(c.user) + fmt.Sprintf(format, args...)
}

func (c *Client) cacheKey(kind string) string {
	return c.user + "-" + kind
}

// WatchedShows returns the user's watched shows with per-season progress.
func (c *Client) WatchedShows(ctx context.Context) ([]WatchedShow, error) {
	var shows []WatchedShow
	err := c.transport.Cached(ctx, c.cacheKey("watched"), &shows, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, c.userPath("/watched/shows"), url.Values{"extended": {"full"}}, &shows)
		return err
	})
	return shows, err
}

// Watchlist returns the shows on the user's watchlist.
func (c *Client) Watchlist(ctx context.Context) ([]WatchlistItem, error) {
	var items []WatchlistItem
	err := c.transport.Cached(ctx, c.cacheKey("watchlist"), &items, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, c.userPath("/watchlist/shows"), url.Values{"extended": {"full"}}, &items)
		return err
	})
	return items, err
}

// Ratings returns the user's show ratings.
func (c *Client) Ratings(ctx context.Context) ([]Rating, error) {
	var ratings []Rating
	err := c.transport.Cached(ctx, c.cacheKey("ratings"), &ratings, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, c.userPath("/ratings/shows"), nil, &ratings)
		return err
	})
	return ratings, err
}

// Lists returns the user's custom lists.
func (c *Client) Lists(ctx context.Context) ([]List, error) {
	var lists []List
	err := c.transport.Cached(ctx, c.cacheKey("lists"), &lists, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, c.userPath("/lists"), nil, &lists)
		return err
	})
	return lists, err
}

// ListItems returns every show of a custom list, following pagination.
func (c *Client) ListItems(ctx context.Context, listID string) ([]ListItem, error) {
	var items []ListItem
	err := c.transport.Cached(ctx, c.cacheKey("list-"+listID), &items, func(ctx context.Context) error {
		items = items[:0]
		for page := 1; ; page++ {
			var batch []ListItem
			resp, err := c.transport.Get(ctx, c.userPath("/lists/%s/items/shows", url.PathEscape(listID)), url.Values{
				"extended": {"full"},
				"page":     {strconv.Itoa(page)},
				"limit":    {strconv.Itoa(constants.TraktPageSize)},
			}, &batch)
			if err != nil {
				return err
			}
			items = append(items, batch...)

			pages, _ := strconv.Atoi(resp.Header.Get("X-Pagination-Page-Count"))
			if page >= pages || len(batch) == 0 {
				return nil
			}
		}
	})
	return items, err
}

// Show returns a show with extended info.
func (c *Client) Show(ctx context.Context, id string) (*Show, error) {
	var show Show
	err := c.transport.Cached(ctx, "show-"+id, &show, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, "/shows/"+url.PathEscape(id), url.Values{"extended": {"full"}}, &show)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// SearchShows searches shows by title.
func (c *Client) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	var results []SearchResult
	_, err := c.transport.Get(ctx, "/search/show", url.Values{
		"query":    {query},
		"extended": {"full"},
		"limit":    {strconv.Itoa(constants.SearchLimit)},
	}, &results)
	return results, err
}

// CreateList creates a private custom list.
func (c *Client) CreateList(ctx context.Context, name, description string) (*List, error) {
	var list List
	_, err := c.transport.Send(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.userPath("/lists"),
		JSON:   createListRequest{Name: name, Description: description, Privacy: "private"},
	}, &list)
	if err != nil {
		return nil, err
	}
	c.transport.Invalidate(ctx, c.cacheKey("lists"))
	return &list, nil
}

// AddListItems adds shows to a custom list.
func (c *Client) AddListItems(ctx context.Context, listID string, shows []SyncShow) (*SyncResponse, error) {
	resp, err := c.sync(ctx, c.userPath("/lists/%s/items", url.PathEscape(listID)), shows)
	if err != nil {
		return nil, err
	}
	c.transport.Invalidate(ctx, c.cacheKey("list-"+listID), c.cacheKey("lists"))
	return resp, nil
}

// AddToHistory marks shows, or selected episodes of them, as watched.
func (c *Client) AddToHistory(ctx context.Context, shows []SyncShow) (*SyncResponse, error) {
	resp, err := c.sync(ctx, "/sync/history", shows)
	if err != nil {
		return nil, err
	}
	c.transport.Invalidate(ctx, c.cacheKey("watched"))
	return resp, nil
}

// AddToWatchlist adds shows to the watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, shows []SyncShow) (*SyncResponse, error) {
	resp, err := c.sync(ctx, "/sync/watchlist", shows)
	if err != nil {
		return nil, err
	}
	c.transport.Invalidate(ctx, c.cacheKey("watchlist"))
	return resp, nil
}

// AddRatings rates shows on a 1-10 scale.
func (c *Client) AddRatings(ctx context.Context, shows []SyncShow) (*SyncResponse, error) {
	resp, err := c.sync(ctx, "/sync/ratings", shows)
	if err != nil {
		return nil, err
	}
	c.transport.Invalidate(ctx, c.cacheKey("ratings"))
	return resp, nil
}

func (c *Client) sync(ctx context.Context, path string, shows []SyncShow) (*SyncResponse, error) {
	var out SyncResponse
	if _, err := c.transport.Send(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   path,
		JSON:   syncRequest{Shows: shows},
	}, &out); err != nil {
		return nil, err
	}
	if len(out.NotFound.Shows) > 0 {
		missing := out.NotFound.Shows[0].IDs
		id := missing.Slug
		if id == "" {
			id = itoa(missing.Trakt)
		}
		return &out, errors.NewNotFoundError("trakt show", id)
	}
	return &out, nil
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
