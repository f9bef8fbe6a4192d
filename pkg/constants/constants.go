// Package constants provides shared constants used throughout watchsync.
// This includes timeouts, rate limits, cache retention windows, file
// permissions and scoring weights that must agree across packages.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to catalog APIs
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute

	// StoreTimeout bounds a single persistent store round trip
	StoreTimeout = 5 * time.Second
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like token databases (rw-------)
	SecureFilePermissions = 0600
)

// Rate limiting constants. Every outbound call passes through a throttle
// configured with one of these windows.
const (
	// TraktMaxRequests is the number of Trakt calls allowed per TraktWindow
	TraktMaxRequests = 1000
	// TraktWindow is the Trakt rate limit window
	TraktWindow = 5 * time.Minute

	// MALMaxRequests is the number of MyAnimeList calls allowed per MALWindow
	MALMaxRequests = 60
	// MALWindow is the MyAnimeList rate limit window
	MALWindow = time.Minute

	// IDsMoeMaxRequests is the number of ids.moe calls allowed per IDsMoeWindow
	IDsMoeMaxRequests = 50
	// IDsMoeWindow is the ids.moe rate limit window
	IDsMoeWindow = time.Minute

	// ThrottleSpacing is the fixed delay between consecutive task starts
	ThrottleSpacing = 100 * time.Millisecond

	// ThrottleBuffer is added to every computed window wait
	ThrottleBuffer = 100 * time.Millisecond
)

// Cache retention constants
const (
	// MappingTTL is how long a discovered identity mapping stays live
	MappingTTL = 7 * 24 * time.Hour

	// ResponseTTL is how long cached list and detail responses stay live
	ResponseTTL = time.Hour

	// CacheCleanupInterval is how often the memory backend purges expired records
	CacheCleanupInterval = 5 * time.Minute
)

// Execution constants
const (
	// OperationDelay is the pause inserted after every executed operation
	OperationDelay = 100 * time.Millisecond

	// MALPageSize is the page size requested from the MyAnimeList list endpoint
	MALPageSize = 1000

	// TraktPageSize is the page size requested from paginated Trakt endpoints
	TraktPageSize = 100

	// SearchLimit is the number of candidates requested from catalog searches
	SearchLimit = 10
)

// Identity resolution constants
const (
	// TitleWeight is the share of the composite score taken by title similarity
	TitleWeight = 0.7

	// YearWeight is the bonus for an exact release year match
	YearWeight = 0.3

	// MatchThreshold is the minimum composite score for a primary title match
	MatchThreshold = 0.7

	// AlternativeMatchThreshold applies when the best similarity came from a synonym
	AlternativeMatchThreshold = 0.6

	// ContainmentSimilarity is the similarity assigned when one title contains the other
	ContainmentSimilarity = 0.85
)
