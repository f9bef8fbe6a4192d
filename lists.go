package watchsync

import (
	"context"
	"fmt"
	"slices"

	"github.com/agentstation/utc"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
	"github.com/agentstation/watchsync/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Lists = (*client)(nil)

// Lists pushes MyAnimeList entries to Trakt custom lists.
type Lists interface {
	// PushList resolves MyAnimeList entries with a status to Trakt shows and
	// adds the ones not yet present to the named Trakt list, creating it when missing.
	PushList(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListHistory returns persisted list push results, newest first.
	ListHistory(ctx context.Context) ([]ListResult, error)
}

// ListOptions selects what PushList pushes and where.
type ListOptions struct {
	Name        string          // Trakt list name
	Description string          // Used when the list is created
	Status      catalogs.Status // MyAnimeList status filter, StatusNone for every entry
}

// ListResult is the persisted summary of one list push.
type ListResult struct {
	ID         string          `json:"id" yaml:"id"`
	ListID     string          `json:"list_id" yaml:"list_id"`
	ListName   string          `json:"list_name" yaml:"list_name"`
	Status     catalogs.Status `json:"status,omitempty" yaml:"status,omitempty"`
	Created    bool            `json:"created" yaml:"created"`
	Candidates int             `json:"candidates" yaml:"candidates"`
	Present    int             `json:"present" yaml:"present"`
	Added      int             `json:"added" yaml:"added"`
	Unresolved []string        `json:"unresolved" yaml:"unresolved"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	SyncedAt   utc.Time        `json:"synced_at" yaml:"synced_at"`
}

// Summary returns a human-readable summary of the push.
func (r *ListResult) Summary() string {
	return fmt.Sprintf("%d added to %q, %d already present, %d unresolved", r.Added, r.ListName, r.Present, len(r.Unresolved))
}

// PushList implements Lists.
func (c *client) PushList(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Name == "" {
		return nil, errors.NewValidationError("name", opts.Name, "list name is required")
	}
	source, target, err := c.gatewaysFor(catalogs.MALToTrakt)
	if err != nil {
		return nil, err
	}
	writer, ok := target.(catalogs.ListWriter)
	if !ok {
		return nil, errors.NewConfigError("lists", fmt.Sprintf("%s gateway does not manage lists", target.Service()), nil)
	}

	list := catalogs.SourceList{Kind: catalogs.ListAll}
	if opts.Status != catalogs.StatusNone {
		list = catalogs.SourceList{Kind: catalogs.ListStatus, Status: opts.Status}
	}
	ctx = logging.WithFields(ctx, map[string]any{"list": opts.Name, "source": list.String()})
	logger := logging.FromContext(ctx)

	entries, err := source.Entries(ctx, list)
	if err != nil {
		return nil, errors.WrapResource("fetch", catalogs.ServiceMAL.String(), list.String(), err)
	}

	now := utc.Now()
	result := &ListResult{
		ID:         now.Time.UTC().Format("20060102T150405.000000000Z"),
		ListName:   opts.Name,
		Status:     opts.Status,
		Candidates: len(entries),
		Unresolved: []string{},
		SyncedAt:   now,
	}

	res := c.resolverFor(target)
	var ids []string
	for _, e := range entries {
		m, err := res.Resolve(ctx, e, catalogs.MALToTrakt)
		if err != nil {
			return nil, err
		}
		if m == nil {
			result.Unresolved = append(result.Unresolved, e.Title)
			continue
		}
		if !slices.Contains(ids, m.TargetID) {
			ids = append(ids, m.TargetID)
		}
	}

	result.ListID, result.Created, err = writer.EnsureList(ctx, opts.Name, opts.Description)
	if err != nil {
		return nil, err
	}

	if !result.Created {
		existing, err := target.Entries(ctx, catalogs.SourceList{Kind: catalogs.ListCustom, ID: result.ListID})
		if err != nil {
			return nil, err
		}
		present := make(map[string]struct{}, len(existing)*2)
		for _, e := range existing {
			present[e.NativeID] = struct{}{}
			if id, ok := e.ExternalID("trakt"); ok {
				present[id] = struct{}{}
			}
		}
		ids = slices.DeleteFunc(ids, func(id string) bool {
			_, ok := present[id]
			if ok {
				result.Present++
			}
			return ok
		})
	}

	added, addErr := writer.AddToList(ctx, result.ListID, ids)
	result.Added = added
	if addErr != nil {
		result.Error = addErr.Error()
	}

	c.saveListResult(ctx, result)
	logger.Info().
		Int("added", result.Added).
		Int("present", result.Present).
		Int("unresolved", len(result.Unresolved)).
		Msg("List push finished")
	return result, addErr
}

func (c *client) saveListResult(ctx context.Context, r *ListResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.StoreTimeout)
	defer cancel()
	if err := c.store.Set(ctx, store.ListSyncHistory, r.ID, r, 0); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Failed to save list push result")
	}
}

// ListHistory implements Lists.
func (c *client) ListHistory(ctx context.Context) ([]ListResult, error) {
	results, err := store.LoadAll[ListResult](ctx, c.store, store.ListSyncHistory)
	if err != nil {
		return nil, err
	}
	slices.Reverse(results)
	return results, nil
}
