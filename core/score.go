package core

import (
	"strings"
	"unicode/utf8"
)

// Scores returned by MatchScore for the two special cases.
const (
	ScoreExact  = 100
	ScorePrefix = 95
)

// MatchScore rates how well candidate answers query, in [0,100].
//
// An exact match scores 100 and a candidate that starts with query
// scores 95. Otherwise the score is the shared prefix as a percentage
// of the candidate's length, rounded down. Lengths are in runes.
// The score depends on argument order.
func MatchScore(candidate, query string) int {
	if candidate == query {
		return ScoreExact
	}
	if strings.HasPrefix(candidate, query) {
		return ScorePrefix
	}
	n := utf8.RuneCountInString(candidate)
	if n == 0 {
		return 0
	}
	return CommonPrefixLen(query, candidate) * 100 / n
}

// CommonPrefixLen counts the leading runes a and b share.
func CommonPrefixLen(a, b string) int {
	n := 0
	for a != "" && b != "" {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			break
		}
		n++
		a, b = a[sa:], b[sb:]
	}
	return n
}
