// Package normalize provides a deterministic text normalizer used for record comparison
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Strip punctuation except digits separators . , - +
// 7 Expand stat abbreviations eg ppg->points per game pts->points
// 8 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// statAbbrevs maps box-score shorthand to the words posts and official
// recaps spell out. Word-boundary matched after case folding
var statAbbrevs = map[string]string{
	"ppg": "points per game",
	"rpg": "rebounds per game",
	"apg": "assists per game",
	"spg": "steals per game",
	"bpg": "blocks per game",
	"pts": "points",
	"reb": "rebounds",
	"ast": "assists",
	"stl": "steals",
	"blk": "blocks",
	"fg":  "field goals",
	"3pt": "three pointers",
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = Sanitize(s)

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6 strip punctuation
	ns = stripPunct(ns)

	// 7 expand stat abbreviations
	ns = expandStats(ns)

	// 8 collapse whitespace and trim
	ns = collapseSpaces(ns)

	return ns
}

// stripPunct drops punctuation and symbols, keeping letters, digits,
// whitespace, and the separators posts use inside stat lines (. , - +)
func stripPunct(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '.', r == ',', r == '-', r == '+':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// expandStats replaces whole-word stat abbreviations with their long forms
func expandStats(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	changed := false
	for i, f := range fields {
		if full, ok := statAbbrevs[f]; ok {
			fields[i] = full
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(fields, " ")
}

// collapseSpaces converts whitespace runs to a single ASCII space, but preserves line breaks.
// Runs that contain any newline are collapsed to a single newline. Leading/trailing spaces/newlines are trimmed
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	sawNL := false
	flush := func() {
		if !inWS {
			return
		}
		if sawNL {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		inWS = false
		sawNL = false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			if r == '\n' || r == '\r' {
				sawNL = true
			}
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	out := b.String()
	// Trim both spaces and newlines on edges
	out = strings.Trim(out, " \n\t\r")
	return out
}
