// Package mal provides a client for the MyAnimeList v2 API and its catalog gateway.
package mal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/watchsync/internal/transport"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/throttle"
)

// DefaultBaseURL is the MAL API root.
const DefaultBaseURL = "https://api.myanimelist.net/v2"

const (
	listFields   = "list_status,num_episodes,alternative_titles,start_season"
	animeFields  = "alternative_titles,num_episodes,start_season,media_type,status,my_list_status"
	searchFields = "alternative_titles,num_episodes,start_season"

	maxQueryLength = 64
)

// Config configures a MAL client.
type Config struct {
	BaseURL    string
	Tokens     transport.Tokens
	Throttle   *throttle.Throttle
	Cache      store.Store
	HTTPClient *http.Client
	PageSize   int // defaults to constants.MALPageSize
}

// Client wraps the MAL endpoints watchsync needs.
type Client struct {
	transport *transport.Client
	pageSize  int
}

// NewClient creates a MAL client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.MALPageSize
	}
	return &Client{
		transport: transport.New(transport.Config{
			Service:    catalogs.ServiceMAL,
			BaseURL:    cfg.BaseURL,
			Tokens:     cfg.Tokens,
			Throttle:   cfg.Throttle,
			Cache:      cfg.Cache,
			CacheStore: store.MALCache,
			HTTPClient: cfg.HTTPClient,
		}),
		pageSize: cfg.PageSize,
	}
}

func listKey(status string, offset int) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("@me-%s-%d", status, offset)
}

// AnimeList returns one page of the user's list. An empty status returns every status.
func (c *Client) AnimeList(ctx context.Context, status string, limit, offset int) (*ListPage, error) {
	var page ListPage
	err := c.transport.Cached(ctx, listKey(status, offset), &page, func(ctx context.Context) error {
		query := url.Values{
			"limit":  {strconv.Itoa(limit)},
			"offset": {strconv.Itoa(offset)},
			"fields": {listFields},
		}
		if status != "" {
			query.Set("status", status)
		}
		_, err := c.transport.Get(ctx, "/users/@me/animelist", query, &page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// AllAnime follows paging.next from fromOffset until exhausted. On failure it
// returns the items read so far and the offset to resume from.
func (c *Client) AllAnime(ctx context.Context, status string, fromOffset int) ([]ListItem, int, error) {
	var items []ListItem
	offset := fromOffset
	for {
		page, err := c.AnimeList(ctx, status, c.pageSize, offset)
		if err != nil {
			return items, offset, err
		}
		items = append(items, page.Data...)
		logging.FromContext(ctx).Debug().
			Int("offset", offset).
			Int("count", len(page.Data)).
			Msg("Fetched MAL list page")

		if page.Paging.Next == "" || len(page.Data) == 0 {
			return items, offset + len(page.Data), nil
		}
		offset += c.pageSize
	}
}

// Anime returns one anime with the user's list status.
func (c *Client) Anime(ctx context.Context, id string) (*Anime, error) {
	var anime Anime
	err := c.transport.Cached(ctx, "anime-"+id, &anime, func(ctx context.Context) error {
		_, err := c.transport.Get(ctx, "/anime/"+url.PathEscape(id), url.Values{"fields": {animeFields}}, &anime)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// UpdateStatus creates or updates the user's list entry for an anime.
func (c *Client) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*ListStatus, error) {
	var status ListStatus
	_, err := c.transport.Send(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/anime/" + url.PathEscape(id) + "/my_list_status",
		Form:   update.Form(),
	}, &status)
	if err != nil {
		return nil, err
	}
	c.transport.InvalidateAll(ctx)
	return &status, nil
}

// DeleteEntry removes an anime from the user's list.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	_, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/anime/" + url.PathEscape(id) + "/my_list_status",
	})
	if err != nil {
		return err
	}
	c.transport.InvalidateAll(ctx)
	return nil
}

// SearchAnime searches anime by title.
func (c *Client) SearchAnime(ctx context.Context, query string, limit int) ([]Anime, error) {
	if r := []rune(query); len(r) > maxQueryLength {
		query = string(r[:maxQueryLength])
	}
	var resp searchResponse
	_, err := c.transport.Get(ctx, "/anime", url.Values{
		"q":      {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {searchFields},
	}, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]Anime, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, d.Node)
	}
	return out, nil
}
