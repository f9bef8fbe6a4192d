package catalogs

import (
	"fmt"

	"github.com/agentstation/utc"
)

// Mapping is a persisted identity correspondence between a Trakt show and a
// MyAnimeList anime. Mappings are never mutated, only replaced.
type Mapping struct {
	TraktID      string   `json:"trakt_id" yaml:"trakt_id"`
	MALID        string   `json:"mal_id" yaml:"mal_id"`
	Title        string   `json:"title" yaml:"title"`
	Year         int      `json:"year,omitempty" yaml:"year,omitempty"`
	Method       string   `json:"method,omitempty" yaml:"method,omitempty"` // Strategy that discovered the mapping
	Confidence   float64  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	DiscoveredAt utc.Time `json:"discovered_at" yaml:"discovered_at"`
	ExpiresAt    utc.Time `json:"expires_at" yaml:"expires_at"`
}

// IDFor returns the mapping's identifier on the given service.
func (m Mapping) IDFor(s Service) string {
	switch s {
	case ServiceTrakt:
		return m.TraktID
	case ServiceMAL:
		return m.MALID
	}
	return ""
}

// Partner returns the identifier on the other side of the mapping.
func (m Mapping) Partner(s Service) string {
	if s == ServiceTrakt {
		return m.MALID
	}
	return m.TraktID
}

// Live reports whether the mapping has not expired at now.
func (m Mapping) Live(now utc.Time) bool {
	return m.ExpiresAt.Time.IsZero() || now.Time.Before(m.ExpiresAt.Time)
}

// MappingKey returns the store key of a mapping record for one side.
func MappingKey(s Service, id string) string {
	return fmt.Sprintf("%s-%s", s, id)
}

// NewMapping builds a mapping with both identifiers set from the given pair.
func NewMapping(source Service, sourceID, targetID string) Mapping {
	if source == ServiceTrakt {
		return Mapping{TraktID: sourceID, MALID: targetID}
	}
	return Mapping{TraktID: targetID, MALID: sourceID}
}
