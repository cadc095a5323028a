package hr

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// Fuzzy matching parameters.
const (
	MatchThreshold  = 0.6
	MaxFuzzyMatches = 5

	levenshteinWeight = 0.6
	sequenceWeight    = 0.4
)

// NormalizeName lowercases name, drops punctuation and collapses whitespace.
func NormalizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Similarity scores two names in [0, 1] as a weighted blend of normalized
// Levenshtein similarity and the longest-matching-blocks ratio.
func Similarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)

	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb), 1)
	lev := 1 - float64(levenshtein.ComputeDistance(na, nb))/float64(maxLen)

	seq := difflib.NewMatcher(runeTokens(na), runeTokens(nb)).Ratio()

	return lev*levenshteinWeight + seq*sequenceWeight
}

type scored struct {
	emp   Employee
	score float64
}

// rankByName scores each employee against query and returns those at or
// above threshold, best first.
func rankByName(query string, employees []Employee, threshold float64) []scored {
	qFirst, qLast := splitName(query)

	var out []scored
	for _, emp := range employees {
		name := strings.TrimSpace(emp.Name)
		best := Similarity(query, name)

		if first, rest := splitName(name); rest != "" {
			best = max(best, Similarity(query, rest+" "+first))

			if qLast != "" {
				fs, ls := Similarity(qFirst, first), Similarity(qLast, rest)
				if fs > 0 || ls > 0 {
					best = max(best, (fs+ls)/2)
				}
			}
		}

		if best >= threshold {
			out = append(out, scored{emp: emp, score: best})
		}
	}

	slices.SortStableFunc(out, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	return out
}

// splitName returns the first word and the remaining words.
func splitName(name string) (first, rest string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// runeTokens splits s into one-rune strings so the sequence matcher
// compares characters rather than lines.
func runeTokens(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
