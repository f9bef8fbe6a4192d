package mal

import (
	"context"
	"fmt"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
)

// Gateway adapts Client to catalogs.Gateway.
type Gateway struct {
	client *Client
}

var _ catalogs.Gateway = (*Gateway)(nil)

// NewGateway creates a MAL gateway.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

// Client returns the underlying MAL client.
func (g *Gateway) Client() *Client {
	return g.client
}

// Service implements catalogs.Gateway.
func (g *Gateway) Service() catalogs.Service {
	return catalogs.ServiceMAL
}

// Entries implements catalogs.Gateway.
func (g *Gateway) Entries(ctx context.Context, list catalogs.SourceList) ([]catalogs.Entry, error) {
	var status string
	switch list.Kind {
	case "", catalogs.ListAll:
	case catalogs.ListStatus:
		if status = NativeStatus(list.Status); status == "" {
			return nil, errors.NewValidationError("source", list.String(), "no MyAnimeList status for "+string(list.Status))
		}
	default:
		return nil, errors.NewValidationError("source", list.String(), "MyAnimeList supports all or status:<status>")
	}

	items, _, err := g.client.AllAnime(ctx, status, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]catalogs.Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, entryFromAnime(it.Node, it.ListStatus))
	}
	return entries, nil
}

// Entry implements catalogs.Gateway.
func (g *Gateway) Entry(ctx context.Context, id string) (*catalogs.Entry, error) {
	a, err := g.client.Anime(ctx, id)
	if err != nil {
		return nil, err
	}
	e := entryFromAnime(*a, nil)
	return &e, nil
}

// Search implements catalogs.Gateway.
func (g *Gateway) Search(ctx context.Context, title string) ([]catalogs.Entry, error) {
	results, err := g.client.SearchAnime(ctx, title, constants.SearchLimit)
	if err != nil {
		return nil, err
	}
	entries := make([]catalogs.Entry, 0, len(results))
	for _, a := range results {
		entries = append(entries, entryFromAnime(a, &ListStatus{}))
	}
	return entries, nil
}

// Mutate implements catalogs.Gateway. Adds and updates are the same PATCH.
func (g *Gateway) Mutate(ctx context.Context, m catalogs.Mutation) error {
	if m.TargetID == "" {
		return errors.NewValidationError("target_id", m.TargetID, "mal mutation requires an anime id")
	}

	var update StatusUpdate
	if c := m.Changes.Status; c != nil {
		if update.Status = NativeStatus(c.To); update.Status == "" {
			return errors.NewValidationError("status", c.To, fmt.Sprintf("no MyAnimeList status for %q", c.To))
		}
	}
	if c := m.Changes.Episodes; c != nil {
		n := c.To
		update.NumWatchedEpisodes = &n
	}
	if c := m.Changes.Score; c != nil {
		n := c.To
		update.Score = &n
	}
	if update.IsEmpty() {
		return nil
	}

	_, err := g.client.UpdateStatus(ctx, m.TargetID, update)
	return err
}

// Remove deletes an anime from the user's list.
func (g *Gateway) Remove(ctx context.Context, id string) error {
	return g.client.DeleteEntry(ctx, id)
}
