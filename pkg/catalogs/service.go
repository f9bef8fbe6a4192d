// Package catalogs defines the watch-state domain shared by every watchsync
// component: the two catalog services, sync directions, the normalized status
// vocabulary, entries, identity mappings and the mutations applied to a catalog.
//
// Entries are transient and owned by the run that fetched them. Mappings and
// run results are owned by the persistent store.
package catalogs

import (
	"strings"

	"github.com/agentstation/watchsync/pkg/errors"
)

// Service identifies one of the reconciled catalogs.
type Service string

// Supported catalog services.
const (
	ServiceTrakt Service = "trakt" // show tracker
	ServiceMAL   Service = "mal"   // anime tracker (MyAnimeList)
)

// String returns the string representation of a Service.
func (s Service) String() string {
	return string(s)
}

// DisplayName returns a human-readable service name.
func (s Service) DisplayName() string {
	switch s {
	case ServiceTrakt:
		return "Trakt"
	case ServiceMAL:
		return "MyAnimeList"
	default:
		return string(s)
	}
}

// ParseService parses a service name, accepting common aliases.
func ParseService(s string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trakt", "trakt.tv":
		return ServiceTrakt, nil
	case "mal", "myanimelist":
		return ServiceMAL, nil
	}
	return "", errors.NewValidationError("service", s, "must be one of: trakt, mal")
}

// Direction selects which catalog is authoritative for a run.
type Direction string

// Supported sync directions.
const (
	TraktToMAL Direction = "trakt-to-mal"
	MALToTrakt Direction = "mal-to-trakt"
)

// Directions lists every supported direction.
func Directions() []Direction {
	return []Direction{TraktToMAL, MALToTrakt}
}

// String returns the string representation of a Direction.
func (d Direction) String() string {
	return string(d)
}

// Source returns the authoritative catalog.
func (d Direction) Source() Service {
	if d == MALToTrakt {
		return ServiceMAL
	}
	return ServiceTrakt
}

// Target returns the catalog being mutated.
func (d Direction) Target() Service {
	if d == MALToTrakt {
		return ServiceTrakt
	}
	return ServiceMAL
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == MALToTrakt {
		return TraktToMAL
	}
	return MALToTrakt
}

// Validate reports whether d is a known direction.
func (d Direction) Validate() error {
	switch d {
	case TraktToMAL, MALToTrakt:
		return nil
	}
	return errors.NewValidationError("direction", string(d), "must be one of: trakt-to-mal, mal-to-trakt")
}

// ParseDirection parses a direction string.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}
