package mal

import (
	"strconv"

	"github.com/agentstation/watchsync/pkg/catalogs"
)

// MAL list status values.
const (
	StatusWatching    = "watching"
	StatusCompleted   = "completed"
	StatusOnHold      = "on_hold"
	StatusDropped     = "dropped"
	StatusPlanToWatch = "plan_to_watch"
)

var toCatalog = map[string]catalogs.Status{
	StatusWatching:    catalogs.StatusWatching,
	StatusCompleted:   catalogs.StatusCompleted,
	StatusOnHold:      catalogs.StatusOnHold,
	StatusDropped:     catalogs.StatusDropped,
	StatusPlanToWatch: catalogs.StatusPlanned,
}

// NormalizeStatus maps a MAL status to the shared vocabulary.
func NormalizeStatus(s string) catalogs.Status {
	return toCatalog[s]
}

// NativeStatus maps a shared status to MAL. StatusNone maps to "".
func NativeStatus(s catalogs.Status) string {
	for native, st := range toCatalog {
		if st == s {
			return native
		}
	}
	return ""
}

func entryFromAnime(a Anime, ls *ListStatus) catalogs.Entry {
	id := strconv.Itoa(a.ID)
	e := catalogs.Entry{
		Service:           catalogs.ServiceMAL,
		NativeID:          id,
		Title:             a.Title,
		AlternativeTitles: a.AlternativeTitles.All(),
		Year:              a.Year(),
		TotalEpisodes:     a.NumEpisodes,
		ExternalIDs:       map[string]string{"mal": id},
	}
	if ls == nil {
		ls = a.MyListStatus
	}
	if ls != nil {
		e.RawStatus = ls.Status
		e.Status = NormalizeStatus(ls.Status)
		e.EpisodesWatched = ls.NumEpisodesWatched
		e.Score = ls.Score
	}
	return e
}
