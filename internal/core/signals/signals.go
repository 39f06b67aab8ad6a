// Package signals pulls matching hints (flight, crop, variety codes and anchor
// words) out of normalized OCR text.
package signals

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Signals are the hints extracted from one normalized OCR text.
type Signals struct {
	Flight       string
	Crop         string
	Patterns     []string
	StrongTokens []string
}

// flightPatterns are tried in order; the first hit wins.
var flightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`:\d{3}-\d{4} ?\d{4}`),
	regexp.MustCompile(`\b\d{3}-\d{4} ?\d{4}\b`),
	regexp.MustCompile(`\b\d{3} \d{4} \d{4}\b`),
}

var (
	reRangeCode      = regexp.MustCompile(`\b\d{2,3}-\d{1,3}\b`)
	reMultiplierCode = regexp.MustCompile(`(?i)X\d{2,4}\b`)
	reDigits         = regexp.MustCompile(`^\d+$`)
)

// Stoplist holds logistics and packing words that never anchor a variety.
var Stoplist = map[string]struct{}{
	"AWB": {}, "HAWB": {}, "MAWB": {}, "RUC": {}, "PACKING": {}, "DATE": {},
	"FORWARDER": {}, "ALLIANCE": {}, "GROUP": {}, "ECUADOR": {}, "LENGTH": {},
	"BUNCH": {}, "BUNCHES": {}, "STEM": {}, "STEMS": {}, "PCS": {}, "BOX": {},
	"ROSES": {}, "ROSELY": {}, "FLOWERS": {}, "VERALEZA": {}, "SLU": {},
	"LOGIZTIK": {}, "VARIETY": {}, "VARIEDAD": {}, "VAR:": {}, "CARGO": {},
}

// Extract derives all signals from normalized text. crops are the normalized
// crop names known to the catalog, in catalog order.
func Extract(normalized string, crops []string) Signals {
	return Signals{
		Flight:       Flight(normalized),
		Crop:         DetectCrop(normalized, crops),
		Patterns:     Patterns(normalized),
		StrongTokens: StrongTokens(normalized),
	}
}

// Flight returns the first flight number in s without its leading colon, or "".
func Flight(s string) string {
	for _, re := range flightPatterns {
		if m := re.FindString(s); m != "" {
			return strings.TrimPrefix(m, ":")
		}
	}
	return ""
}

// DetectCrop returns the longest crop that occurs in s. Ties keep the earlier crop.
func DetectCrop(s string, crops []string) string {
	best := ""
	for _, c := range crops {
		if c == "" || !strings.Contains(s, c) {
			continue
		}
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

// Patterns returns range codes ("60-4") followed by multiplier codes ("X500"),
// deduplicated in order of first occurrence.
func Patterns(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(m string) {
		m = strings.ToUpper(m)
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	for _, m := range reRangeCode.FindAllString(s, -1) {
		add(m)
	}
	for _, m := range reMultiplierCode.FindAllString(s, -1) {
		add(m)
	}
	return out
}

// StrongTokens returns the words of s that can anchor a catalog lookup.
func StrongTokens(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, tok := range strings.Fields(s) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if utf8.RuneCountInString(tok) < 3 || reDigits.MatchString(tok) {
			continue
		}
		if _, stop := Stoplist[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ContainsAny reports whether s contains at least one of patterns.
func ContainsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
