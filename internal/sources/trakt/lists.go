package trakt

import (
	"context"
	"strings"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

var _ catalogs.ListWriter = (*Gateway)(nil)

// EnsureList implements catalogs.ListWriter. Names compare case-insensitively.
func (g *Gateway) EnsureList(ctx context.Context, name, description string) (string, bool, error) {
	lists, err := g.client.Lists(ctx)
	if err != nil {
		return "", false, err
	}
	for _, l := range lists {
		if strings.EqualFold(strings.TrimSpace(l.Name), strings.TrimSpace(name)) {
			return l.ID(), false, nil
		}
	}
	list, err := g.client.CreateList(ctx, name, description)
	if err != nil {
		return "", false, err
	}
	return list.ID(), true, nil
}

// AddToList implements catalogs.ListWriter.
func (g *Gateway) AddToList(ctx context.Context, listID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	shows := make([]SyncShow, 0, len(ids))
	for _, id := range ids {
		shows = append(shows, SyncShow{IDs: idsFor(id)})
	}
	resp, err := g.client.AddListItems(ctx, listID, shows)
	if resp == nil {
		return 0, err
	}
	return resp.Added.Shows, err
}
