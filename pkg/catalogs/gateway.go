package catalogs

import (
	"context"
	"strings"

	"github.com/agentstation/watchsync/pkg/errors"
)

// Gateway is the catalog-neutral view of one catalog service.
type Gateway interface {
	// Service returns the catalog this gateway talks to.
	Service() Service
	// Entries fetches every entry of a list, following pagination until exhausted.
	Entries(ctx context.Context, list SourceList) ([]Entry, error)
	// Entry fetches a single title by its native identifier.
	Entry(ctx context.Context, id string) (*Entry, error)
	// Search returns candidate titles for a free-text query.
	Search(ctx context.Context, title string) ([]Entry, error)
	// Mutate applies a status, progress or score change to the catalog.
	Mutate(ctx context.Context, m Mutation) error
}

// SourceListKind names a list a gateway can read.
type SourceListKind string

// Source list kinds.
const (
	ListAll       SourceListKind = "all"       // every entry of the user's list (MAL), watched shows and watchlist (Trakt)
	ListWatched   SourceListKind = "watched"   // Trakt watched shows
	ListWatchlist SourceListKind = "watchlist" // Trakt watchlist
	ListCustom    SourceListKind = "list"      // Trakt custom list, identified by ID
	ListStatus    SourceListKind = "status"    // MAL list filtered by Status
)

// SourceList selects which list of a catalog is read.
type SourceList struct {
	Kind   SourceListKind `json:"kind" yaml:"kind"`
	ID     string         `json:"id,omitempty" yaml:"id,omitempty"`
	Status Status         `json:"status,omitempty" yaml:"status,omitempty"`
}

// String renders the list in the form accepted by ParseSourceList.
func (l SourceList) String() string {
	switch l.Kind {
	case ListCustom:
		return "list:" + l.ID
	case ListStatus:
		return "status:" + string(l.Status)
	case "":
		return string(ListAll)
	default:
		return string(l.Kind)
	}
}

// ParseSourceList parses "all", "watched", "watchlist", "list:<id>" or "status:<status>".
func ParseSourceList(s string) (SourceList, error) {
	s = strings.TrimSpace(s)
	kind, arg, _ := strings.Cut(s, ":")
	switch SourceListKind(strings.ToLower(kind)) {
	case "", ListAll:
		return SourceList{Kind: ListAll}, nil
	case ListWatched:
		return SourceList{Kind: ListWatched}, nil
	case ListWatchlist:
		return SourceList{Kind: ListWatchlist}, nil
	case ListCustom:
		if arg == "" {
			return SourceList{}, errors.NewValidationError("source", s, "list requires an id, e.g. list:anime")
		}
		return SourceList{Kind: ListCustom, ID: arg}, nil
	case ListStatus:
		status, ok := ParseStatus(arg)
		if !ok {
			return SourceList{}, errors.NewValidationError("source", s, "unknown status")
		}
		return SourceList{Kind: ListStatus, Status: status}, nil
	}
	return SourceList{}, errors.NewValidationError("source", s, "must be all, watched, watchlist, list:<id> or status:<status>")
}

// ListWriter is implemented by gateways that manage named custom lists.
type ListWriter interface {
	// EnsureList returns the id of the list called name, creating it when missing.
	EnsureList(ctx context.Context, name, description string) (id string, created bool, err error)
	// AddToList adds entries by native id and reports how many were new.
	AddToList(ctx context.Context, listID string, ids []string) (int, error)
}
