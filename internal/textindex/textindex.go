// Package textindex implements the word-level relevance scoring used for
// free-text search over authors and books.
//
// A query is split into lowercase words; a document is a list of fields. The
// score counts every (query word, document word) pair that is equal, with the
// first field weighted double. A score of zero means no match.
package textindex

import (
	"strings"
	"unicode"
)

// primaryWeight is the multiplier applied to matches in the first field.
const primaryWeight = 2

// Tokenize splits s into lowercase words made of letters and digits.
// Quotes and punctuation act as separators, so `'detective'` yields
// ["detective"]. Duplicate words are kept.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms returns the distinct words of a query in first-seen order.
func Terms(query string) []string {
	words := Tokenize(query)
	seen := make(map[string]struct{}, len(words))
	terms := words[:0]
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// Score returns the relevance of fields against the given terms.
func Score(terms []string, fields ...string) float64 {
	if len(terms) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}

	var score float64
	for i, f := range fields {
		weight := 1.0
		if i == 0 {
			weight = primaryWeight
		}
		for _, w := range Tokenize(f) {
			if _, ok := want[w]; ok {
				score += weight
			}
		}
	}
	return score
}
