package trakt

import (
	"strconv"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

// showID returns the slug, or the numeric id when the show has no slug.
func showID(s Show) string {
	if s.IDs.Slug != "" {
		return s.IDs.Slug
	}
	return itoa(s.IDs.Trakt)
}

func entryFromShow(s Show) catalogs.Entry {
	e := catalogs.Entry{
		Service:       catalogs.ServiceTrakt,
		NativeID:      showID(s),
		Title:         s.Title,
		Year:          s.Year,
		TotalEpisodes: s.AiredEpisodes,
		ExternalIDs:   map[string]string{},
	}
	if s.IDs.Trakt != 0 {
		e.ExternalIDs["trakt"] = strconv.Itoa(s.IDs.Trakt)
	}
	if s.IDs.Slug != "" {
		e.ExternalIDs["slug"] = s.IDs.Slug
	}
	if s.IDs.TMDB != 0 {
		e.ExternalIDs["tmdb"] = strconv.Itoa(s.IDs.TMDB)
	}
	if s.IDs.TVDB != 0 {
		e.ExternalIDs["tvdb"] = strconv.Itoa(s.IDs.TVDB)
	}
	if s.IDs.IMDB != "" {
		e.ExternalIDs["imdb"] = s.IDs.IMDB
	}
	return e
}

// entryFromWatched derives the status from progress: a show is completed once
// every aired episode was watched, or when the aired count is unknown.
func entryFromWatched(w WatchedShow) catalogs.Entry {
	e := entryFromShow(w.Show)
	e.RawStatus = "watched"
	e.EpisodesWatched = w.Episodes()

	aired := w.Show.AiredEpisodes
	if aired > 0 && e.EpisodesWatched < aired {
		e.Status = catalogs.StatusWatching
	} else {
		e.Status = catalogs.StatusCompleted
	}
	return e
}
