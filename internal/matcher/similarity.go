// Package matcher scores how alike two titles are and filters titles by
// glob or regex patterns.
//
// Similarity works on normalized titles: case-folded, trimmed, with internal
// whitespace collapsed. Identical titles score 1.0, a title literally
// contained in the other scores ContainmentScore, and anything else scores
// 1 - levenshtein/longer, measured in runes.
package matcher

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/watchsync/pkg/constants"
)

// ContainmentScore is the similarity of two titles where one contains the other.
const ContainmentScore = constants.ContainmentSimilarity

// Normalize folds case and collapses whitespace.
func Normalize(s string) string {
	// A Caser is stateful and cannot be shared between goroutines.
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// Similarity returns a score in [0, 1]. An empty title never matches.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return ContainmentScore
	}

	ra, rb := []rune(a), []rune(b)
	longer := max(len(ra), len(rb))
	return 1 - float64(distance(ra, rb))/float64(longer)
}

// Distance returns the Levenshtein edit distance between two titles in runes.
func Distance(a, b string) int {
	return distance([]rune(a), []rune(b))
}

// distance is a two-row dynamic programming Levenshtein.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	row := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		row, prev = prev, row
	}
	return prev[len(b)]
}

// Best compares every source title with every candidate title and returns the
// highest similarity along with the indexes that produced it. Scores are never
// averaged. Index 0 on either side is the primary title.
func Best(sources, candidates []string) (score float64, source, candidate int) {
	source, candidate = -1, -1
	for i, s := range sources {
		for j, c := range candidates {
			if sim := Similarity(s, c); sim > score {
				score, source, candidate = sim, i, j
				if score == 1 {
					return score, source, candidate
				}
			}
		}
	}
	return score, source, candidate
}
