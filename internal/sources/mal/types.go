package mal

import (
	"net/url"
	"strconv"
)

// Anime is a MAL anime node.
type Anime struct {
	ID                int               `json:"id"`
	Title             string            `json:"title"`
	AlternativeTitles AlternativeTitles `json:"alternative_titles"`
	NumEpisodes       int               `json:"num_episodes"`
	StartSeason       *Season           `json:"start_season,omitempty"`
	MediaType         string            `json:"media_type,omitempty"`
	Status            string            `json:"status,omitempty"`
	MyListStatus      *ListStatus       `json:"my_list_status,omitempty"`
}

// Year returns the premiere year, or 0 when unknown.
func (a Anime) Year() int {
	if a.StartSeason == nil {
		return 0
	}
	return a.StartSeason.Year
}

// AlternativeTitles are the synonyms and localized titles of an anime.
type AlternativeTitles struct {
	Synonyms []string `json:"synonyms,omitempty"`
	En       string   `json:"en,omitempty"`
	Ja       string   `json:"ja,omitempty"`
}

// All returns English, synonyms and Japanese titles in that order.
func (t AlternativeTitles) All() []string {
	out := make([]string, 0, len(t.Synonyms)+2)
	if t.En != "" {
		out = append(out, t.En)
	}
	out = append(out, t.Synonyms...)
	if t.Ja != "" {
		out = append(out, t.Ja)
	}
	return out
}

// Season is the premiere season of an anime.
type Season struct {
	Year   int    `json:"year"`
	Season string `json:"season"`
}

// ListStatus is the user's state for one anime.
type ListStatus struct {
	Status             string `json:"status"`
	Score              int    `json:"score"`
	NumEpisodesWatched int    `json:"num_episodes_watched"`
	IsRewatching       bool   `json:"is_rewatching"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// ListItem is an item of the user's anime list.
type ListItem struct {
	Node       Anime       `json:"node"`
	ListStatus *ListStatus `json:"list_status,omitempty"`
}

// Paging carries the continuation links of a list page.
type Paging struct {
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// ListPage is one page of /users/@me/animelist.
type ListPage struct {
	Data   []ListItem `json:"data"`
	Paging Paging     `json:"paging"`
}

type searchResponse struct {
	Data []struct {
		Node Anime `json:"node"`
	} `json:"data"`
}

// StatusUpdate is the form body of a list status update. Nil fields are not sent.
type StatusUpdate struct {
	Status             string
	Score              *int
	NumWatchedEpisodes *int
}

// IsEmpty reports whether the update changes nothing.
func (u StatusUpdate) IsEmpty() bool {
	return u.Status == "" && u.Score == nil && u.NumWatchedEpisodes == nil
}

// Form encodes the update.
func (u StatusUpdate) Form() url.Values {
	form := url.Values{}
	if u.Status != "" {
		form.Set("status", u.Status)
	}
	if u.Score != nil {
		form.Set("score", strconv.Itoa(*u.Score))
	}
	if u.NumWatchedEpisodes != nil {
		form.Set("num_watched_episodes", strconv.Itoa(*u.NumWatchedEpisodes))
	}
	return form
}
