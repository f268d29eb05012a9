// internal/core/tablematch.go
package core

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultMatchThreshold is the minimum score a candidate must exceed to replace a mistyped name.
const DefaultMatchThreshold = 70

// MatchScore rates how similar two table names are on a 0-100 scale, ignoring case.
// When one name is a subsequence of the other the score is the insert/delete
// similarity 2*len(short)/(len(a)+len(b)); otherwise it is the Levenshtein ratio.
func MatchScore(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 100
	}
	na, nb := utf8.RuneCountInString(la), utf8.RuneCountInString(lb)
	if na == 0 || nb == 0 {
		return 0
	}

	if fuzzy.MatchFold(la, lb) || fuzzy.MatchFold(lb, la) {
		short := min(na, nb)
		return 100 * float64(2*short) / float64(na+nb)
	}

	dist := fuzzy.LevenshteinDistance(la, lb)
	longest := max(na, nb)
	if dist >= longest {
		return 0
	}
	return 100 * (1 - float64(dist)/float64(longest))
}

// CorrectTableName returns the best matching actual table for a possibly mistyped name.
// The match is used only when its score is strictly above threshold; otherwise the
// input is returned unchanged. Ties keep the earliest candidate.
func CorrectTableName(mistyped string, actualTables []string, threshold int) string {
	best := ""
	bestScore := -1.0
	for _, candidate := range actualTables {
		score := MatchScore(mistyped, candidate)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if best != "" && bestScore > float64(threshold) {
		return best
	}
	return mistyped
}
