package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Filter matches titles case-insensitively against a glob or regex pattern.
type Filter struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
}

// NewFilter compiles a title filter. Plain words without glob metacharacters
// match as substrings.
func NewFilter(patternType PatternType, pattern string) (*Filter, error) {
	f := &Filter{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		f.patternType = detectPatternType(pattern)
	}

	switch f.patternType {
	case Glob:
		glob := Normalize(pattern)
		if !strings.ContainsAny(glob, "*?[]") {
			glob = "*" + glob + "*"
		}
		if _, err := filepath.Match(glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		f.glob = glob
	case Regex:
		expr := pattern
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		f.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return f, nil
}

// Match reports whether any of the titles matches.
func (f *Filter) Match(titles ...string) bool {
	for _, title := range titles {
		switch f.patternType {
		case Glob:
			// Glob * does not cross "/", so compare against a slash-free title.
			candidate := strings.ReplaceAll(Normalize(title), "/", " ")
			if ok, _ := filepath.Match(f.glob, candidate); ok {
				return true
			}
		case Regex:
			if f.compiled.MatchString(title) {
				return true
			}
		}
	}
	return false
}

// Pattern returns the original pattern string.
func (f *Filter) Pattern() string {
	return f.pattern
}

// Type returns the resolved pattern type.
func (f *Filter) Type() PatternType {
	return f.patternType
}

// detectPatternType guesses whether a pattern is a regex.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{"^", "$", "\\d", "\\w", "\\s", "(?i)", "{", "}", "+", "|", "(", ")"} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}
