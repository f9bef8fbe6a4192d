package catalogs

import "strings"

// Status is the normalized watch status used across both catalogs.
type Status string

// Normalized statuses. StatusNone marks the absence of a status, for example
// a status that has no equivalent in the target catalog.
const (
	StatusNone      Status = ""
	StatusWatching  Status = "watching"
	StatusCompleted Status = "completed"
	StatusPlanned   Status = "planned"
	StatusOnHold    Status = "on_hold"
	StatusDropped   Status = "dropped"
)

// Statuses lists every normalized status.
func Statuses() []Status {
	return []Status{StatusWatching, StatusCompleted, StatusPlanned, StatusOnHold, StatusDropped}
}

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the normalized statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanned, StatusOnHold, StatusDropped:
		return true
	}
	return false
}

// ParseStatus parses a normalized status, accepting MyAnimeList spellings.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "watching":
		return StatusWatching, true
	case "completed":
		return StatusCompleted, true
	case "planned", "plan_to_watch", "plantowatch":
		return StatusPlanned, true
	case "on_hold", "onhold":
		return StatusOnHold, true
	case "dropped":
		return StatusDropped, true
	}
	return StatusNone, false
}
