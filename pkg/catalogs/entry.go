package catalogs

import (
	"fmt"
	"strings"
)

// Entry is a single title's watch state on one catalog.
type Entry struct {
	Service           Service           `json:"service" yaml:"service"`                                           // Catalog the entry was read from
	NativeID          string            `json:"native_id" yaml:"native_id"`                                       // Catalog identifier (Trakt slug, MAL anime id)
	Title             string            `json:"title" yaml:"title"`                                               // Primary title
	AlternativeTitles []string          `json:"alternative_titles,omitempty" yaml:"alternative_titles,omitempty"` // Synonyms, English and Japanese titles
	Year              int               `json:"year,omitempty" yaml:"year,omitempty"`                             // Release year, 0 when unknown
	Status            Status            `json:"status" yaml:"status"`                                             // Normalized status
	RawStatus         string            `json:"raw_status,omitempty" yaml:"raw_status,omitempty"`                 // Status as reported by the catalog
	EpisodesWatched   int               `json:"episodes_watched" yaml:"episodes_watched"`                         // Progress
	TotalEpisodes     int               `json:"total_episodes,omitempty" yaml:"total_episodes,omitempty"`         // Aired or announced episodes, 0 when unknown
	Score             int               `json:"score,omitempty" yaml:"score,omitempty"`                           // User score on a 0-10 scale, 0 when unrated
	ExternalIDs       map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`             // Other identifiers known to the catalog (trakt, tmdb, tvdb, imdb)
}

// Key returns the catalog-qualified identifier of the entry.
func (e Entry) Key() string {
	return fmt.Sprintf("%s-%s", e.Service, e.NativeID)
}

// Titles returns the primary title followed by non-empty alternatives, without duplicates.
func (e Entry) Titles() []string {
	titles := make([]string, 0, 1+len(e.AlternativeTitles))
	seen := make(map[string]struct{}, 1+len(e.AlternativeTitles))
	for _, t := range append([]string{e.Title}, e.AlternativeTitles...) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	return titles
}

// ExternalID returns the identifier the entry carries for another platform.
func (e Entry) ExternalID(platform string) (string, bool) {
	id, ok := e.ExternalIDs[platform]
	return id, ok && id != ""
}

// PairedEntry is the transient result of identity resolution.
// Target is nil when the entry is unresolved or absent from the target catalog.
// Resolved is false only when no identity mapping exists.
type PairedEntry struct {
	Source   Entry  `json:"source" yaml:"source"`
	Target   *Entry `json:"target,omitempty" yaml:"target,omitempty"`
	TargetID string `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Resolved bool   `json:"resolved" yaml:"resolved"`
}
