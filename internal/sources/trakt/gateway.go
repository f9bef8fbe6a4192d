package trakt

import (
	"context"
	"strconv"
	"time"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
)

// Gateway adapts Client to catalogs.Gateway.
type Gateway struct {
	client *Client
	now    func() time.Time
}

var _ catalogs.Gateway = (*Gateway)(nil)

// NewGateway creates a Trakt gateway.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client, now: time.Now}
}

// Client returns the underlying Trakt client.
func (g *Gateway) Client() *Client {
	return g.client
}

// Service implements catalogs.Gateway.
func (g *Gateway) Service() catalogs.Service {
	return catalogs.ServiceTrakt
}

// Entries implements catalogs.Gateway. Watched shows take precedence over
// watchlist items for the same show.
func (g *Gateway) Entries(ctx context.Context, list catalogs.SourceList) ([]catalogs.Entry, error) {
	switch list.Kind {
	case catalogs.ListWatched:
		return g.watched(ctx)
	case catalogs.ListWatchlist:
		return g.watchlist(ctx)
	case catalogs.ListCustom:
		return g.custom(ctx, list.ID)
	case catalogs.ListStatus:
		all, err := g.all(ctx)
		if err != nil {
			return nil, err
		}
		filtered := make([]catalogs.Entry, 0, len(all))
		for _, e := range all {
			if e.Status == list.Status {
				filtered = append(filtered, e)
			}
		}
		return filtered, nil
	default:
		return g.all(ctx)
	}
}

func (g *Gateway) all(ctx context.Context) ([]catalogs.Entry, error) {
	watched, err := g.watched(ctx)
	if err != nil {
		return nil, err
	}
	watchlist, err := g.watchlist(ctx)
	if err != nil {
		return nil, err
	}
	return merge(watched, watchlist), nil
}

func (g *Gateway) watched(ctx context.Context) ([]catalogs.Entry, error) {
	shows, err := g.client.WatchedShows(ctx)
	if err != nil {
		return nil, err
	}
	scores := g.scores(ctx)
	entries := make([]catalogs.Entry, 0, len(shows))
	for _, w := range shows {
		e := entryFromWatched(w)
		e.Score = scores[e.NativeID]
		entries = append(entries, e)
	}
	return entries, nil
}

// scores returns ratings by slug. Ratings are optional, so failures are logged.
func (g *Gateway) scores(ctx context.Context) map[string]int {
	ratings, err := g.client.Ratings(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Failed to fetch Trakt ratings")
		return nil
	}
	scores := make(map[string]int, len(ratings))
	for _, r := range ratings {
		scores[showID(r.Show)] = r.Rating
	}
	return scores
}

func (g *Gateway) watchlist(ctx context.Context) ([]catalogs.Entry, error) {
	items, err := g.client.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]catalogs.Entry, 0, len(items))
	for _, it := range items {
		e := entryFromShow(it.Show)
		e.Status, e.RawStatus = catalogs.StatusPlanned, "watchlist"
		entries = append(entries, e)
	}
	return entries, nil
}

func (g *Gateway) custom(ctx context.Context, listID string) ([]catalogs.Entry, error) {
	items, err := g.client.ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	watched, err := g.watched(ctx)
	if err != nil {
		return nil, err
	}
	progress := make(map[string]catalogs.Entry, len(watched))
	for _, e := range watched {
		progress[e.NativeID] = e
	}

	entries := make([]catalogs.Entry, 0, len(items))
	for _, it := range items {
		if it.Show == nil {
			continue
		}
		e := entryFromShow(*it.Show)
		if w, ok := progress[e.NativeID]; ok {
			e = w
		} else {
			e.Status, e.RawStatus = catalogs.StatusPlanned, "list"
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entry implements catalogs.Gateway.
func (g *Gateway) Entry(ctx context.Context, id string) (*catalogs.Entry, error) {
	show, err := g.client.Show(ctx, id)
	if err != nil {
		return nil, err
	}
	e := entryFromShow(*show)
	return &e, nil
}

// Search implements catalogs.Gateway.
func (g *Gateway) Search(ctx context.Context, title string) ([]catalogs.Entry, error) {
	results, err := g.client.SearchShows(ctx, title)
	if err != nil {
		return nil, err
	}
	entries := make([]catalogs.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, entryFromShow(r.Show))
	}
	return entries, nil
}

// Mutate implements catalogs.Gateway.
//
// Completed shows are added to history as a whole. Progress is recorded as
// season 1 episodes, which matches how anime seasons usually map onto Trakt
// but not multi-season shows. Planned shows go to the watchlist. A score is
// written as a rating. Watching without new episodes cannot be stored and
// is rejected.
func (g *Gateway) Mutate(ctx context.Context, m catalogs.Mutation) error {
	if m.TargetID == "" {
		return errors.NewValidationError("target_id", m.TargetID, "trakt mutation requires a show id")
	}
	ids := idsFor(m.TargetID)
	watchedAt := g.now().UTC().Format(time.RFC3339)

	status := catalogs.StatusNone
	if m.Changes.Status != nil {
		status = m.Changes.Status.To
	}

	var err error
	switch {
	case status == catalogs.StatusCompleted:
		_, err = g.client.AddToHistory(ctx, []SyncShow{{IDs: ids, WatchedAt: watchedAt}})
	case status == catalogs.StatusPlanned:
		_, err = g.client.AddToWatchlist(ctx, []SyncShow{{IDs: ids}})
	case m.Changes.Episodes != nil:
		from, to := m.Changes.Episodes.From, m.Changes.Episodes.To
		if to > from {
			show := SyncShow{IDs: ids, Seasons: []SyncSeason{{Number: 1, Episodes: episodeRange(from+1, to, watchedAt)}}}
			_, err = g.client.AddToHistory(ctx, []SyncShow{show})
		}
	case status == catalogs.StatusWatching:
		return errors.NewValidationError("changes", m.Changes.String(), "trakt records watching only through newly watched episodes")
	}
	if err != nil {
		return err
	}

	if m.Changes.Score != nil && m.Changes.Score.To > 0 {
		if _, err := g.client.AddRatings(ctx, []SyncShow{{IDs: ids, Rating: m.Changes.Score.To}}); err != nil {
			return err
		}
	}
	return nil
}

func episodeRange(from, to int, watchedAt string) []SyncEpisode {
	eps := make([]SyncEpisode, 0, to-from+1)
	for n := from; n <= to; n++ {
		eps = append(eps, SyncEpisode{Number: n, WatchedAt: watchedAt})
	}
	return eps
}

// idsFor builds the ids object for a slug or numeric Trakt id.
func idsFor(id string) IDs {
	if n, err := strconv.Atoi(id); err == nil {
		return IDs{Trakt: n}
	}
	return IDs{Slug: id}
}

func merge(primary, secondary []catalogs.Entry) []catalogs.Entry {
	seen := make(map[string]struct{}, len(primary))
	out := make([]catalogs.Entry, 0, len(primary)+len(secondary))
	for _, e := range primary {
		seen[e.NativeID] = struct{}{}
		out = append(out, e)
	}
	for _, e := range secondary {
		if _, ok := seen[e.NativeID]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
