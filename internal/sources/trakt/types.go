package trakt

import "time"

// IDs are the identifiers Trakt keeps for a show.
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	TVDB  int    `json:"tvdb,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// Show is a Trakt show with extended info.
type Show struct {
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	IDs           IDs    `json:"ids"`
	Status        string `json:"status,omitempty"`
	AiredEpisodes int    `json:"aired_episodes,omitempty"`
	Network       string `json:"network,omitempty"`
	Country       string `json:"country,omitempty"`
	Language      string `json:"language,omitempty"`
}

// WatchedShow is an item of /users/{user}/watched/shows.
type WatchedShow struct {
	Plays         int             `json:"plays"`
	LastWatchedAt *time.Time      `json:"last_watched_at,omitempty"`
	Show          Show            `json:"show"`
	Seasons       []WatchedSeason `json:"seasons,omitempty"`
}

// WatchedSeason holds the watched episodes of one season.
type WatchedSeason struct {
	Number   int              `json:"number"`
	Episodes []WatchedEpisode `json:"episodes"`
}

// WatchedEpisode is one watched episode.
type WatchedEpisode struct {
	Number        int        `json:"number"`
	Plays         int        `json:"plays"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
}

// Episodes returns the number of distinct watched episodes, excluding specials.
func (w WatchedShow) Episodes() int {
	n := 0
	for _, s := range w.Seasons {
		if s.Number == 0 {
			continue
		}
		n += len(s.Episodes)
	}
	return n
}

// WatchlistItem is an item of /users/{user}/watchlist/shows.
type WatchlistItem struct {
	Rank     int        `json:"rank"`
	ListedAt *time.Time `json:"listed_at,omitempty"`
	Type     string     `json:"type"`
	Show     Show       `json:"show"`
}

// List is a Trakt custom list.
type List struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Privacy     string `json:"privacy,omitempty"`
	ItemCount   int    `json:"item_count"`
	IDs         struct {
		Trakt int    `json:"trakt"`
		Slug  string `json:"slug"`
	} `json:"ids"`
}

// ID returns the identifier used in list URLs.
func (l List) ID() string {
	if l.IDs.Slug != "" {
		return l.IDs.Slug
	}
	return itoa(l.IDs.Trakt)
}

// ListItem is an item of a custom list.
type ListItem struct {
	Rank     int        `json:"rank"`
	ID       int        `json:"id"`
	ListedAt *time.Time `json:"listed_at,omitempty"`
	Type     string     `json:"type"`
	Show     *Show      `json:"show,omitempty"`
}

// Rating is an item of /users/{user}/ratings/shows.
type Rating struct {
	RatedAt *time.Time `json:"rated_at,omitempty"`
	Rating  int        `json:"rating"`
	Type    string     `json:"type"`
	Show    Show       `json:"show"`
}

// SearchResult is an item of /search/show.
type SearchResult struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// SyncShow identifies a show in a sync or list request body.
type SyncShow struct {
	IDs       IDs          `json:"ids"`
	Title     string       `json:"title,omitempty"`
	Year      int          `json:"year,omitempty"`
	WatchedAt string       `json:"watched_at,omitempty"`
	Rating    int          `json:"rating,omitempty"`
	Seasons   []SyncSeason `json:"seasons,omitempty"`
}

// SyncSeason selects episodes of one season.
type SyncSeason struct {
	Number   int           `json:"number"`
	Episodes []SyncEpisode `json:"episodes,omitempty"`
}

// SyncEpisode selects one episode.
type SyncEpisode struct {
	Number    int    `json:"number"`
	WatchedAt string `json:"watched_at,omitempty"`
}

// SyncCounts are the per-kind counters of a sync response.
type SyncCounts struct {
	Movies   int `json:"movies"`
	Shows    int `json:"shows"`
	Seasons  int `json:"seasons"`
	Episodes int `json:"episodes"`
}

// SyncResponse is returned by the /sync endpoints and list item additions.
type SyncResponse struct {
	Added    SyncCounts `json:"added"`
	Existing SyncCounts `json:"existing"`
	NotFound struct {
		Shows []SyncShow `json:"shows"`
	} `json:"not_found"`
}

type syncRequest struct {
	Shows []SyncShow `json:"shows"`
}

type createListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Privacy     string `json:"privacy"`
}
