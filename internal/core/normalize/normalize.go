// Package normalize canonicalizes OCR text and catalog names so both sides of a
// match compare on the same alphabet.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reDisallowed = regexp.MustCompile(`[^A-Z0-9 \-+/:]+`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reRange      = regexp.MustCompile(`\b(\d+)\s*-\s*(\d+)\b`)
	reMultiplier = regexp.MustCompile(`\bX\s*(\d+)\b`)
)

// Normalize folds accents, uppercases, strips everything outside the label
// alphabet, collapses whitespace and glues spaced ranges ("60 - 4") and
// multipliers ("x 500") back together. It is total and idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(fold(s))
	s = reDisallowed.ReplaceAllString(s, " ")
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	s = reRange.ReplaceAllString(s, "$1-$2")
	s = reMultiplier.ReplaceAllString(s, "X$1")
	return s
}

// Lines normalizes every line of raw on its own and drops the ones left empty.
func Lines(raw string) []string {
	raw = reCRLF.ReplaceAllString(raw, "\n")
	var out []string
	for _, ln := range strings.Split(raw, "\n") {
		if n := Normalize(ln); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// fold removes combining marks after canonical decomposition ("Ñ" -> "N").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
