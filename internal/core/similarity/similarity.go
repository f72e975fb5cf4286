// Package similarity provides token-based fuzzy string similarity scores.
// Scores are in [0,1]; inputs are expected to be pre-normalized
// (see core/normalize), the functions here do only token work
package similarity

import (
	"sort"
	"strings"
)

// Ratio returns the Levenshtein similarity of a and b in [0,1].
// 1 means equal, 0 means nothing in common
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	d := levenshtein(a, b)
	max := la
	if lb > max {
		max = lb
	}
	return 1 - float64(d)/float64(max)
}

// TokenSortRatio sorts the whitespace tokens of both strings before
// comparing, so word order does not matter
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// TokenSetRatio compares the token intersection against each side's
// remainder and returns the best of the three pairings. Repetition and
// extra trailing words on one side cost little
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		if len(ta) == 0 && len(tb) == 0 {
			return 1
		}
		return 0
	}

	var inter, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	combA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(base, combA)
	if r := Ratio(base, combB); r > best {
		best = r
	}
	if r := Ratio(combA, combB); r > best {
		best = r
	}
	return best
}

// Best returns max(TokenSortRatio, TokenSetRatio)
func Best(a, b string) float64 {
	s := TokenSortRatio(a, b)
	if t := TokenSetRatio(a, b); t > s {
		s = t
	}
	return s
}

func sortTokens(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		out[f] = struct{}{}
	}
	return out
}

// levenshtein computes edit distance over runes with a two-row table
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			best := prev[j] + 1 // deletion
			if v := cur[j-1] + 1; v < best { // insertion
				best = v
			}
			if v := prev[j-1] + cost; v < best { // substitution
				best = v
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
