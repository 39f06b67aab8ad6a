package resolver

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/label-matcher/constants"
)

var (
	labelMarkers     = []string{"VARIETY", "VAR:", "VARIEDAD"}
	reLabelLine      = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-/ ]{2,}$`)
	reTailRange      = regexp.MustCompile(`\b\d{2,3}-\d{1,3}\b`)
	reTailMultiplier = regexp.MustCompile(`X\d{2,4}\b`)
)

// Salvage is a catalog-free guess recovered from label layout.
type Salvage struct {
	Variety    string
	Confidence float64
	Evidence   string
}

// RegexFallback looks for a label line under a VARIETY marker and a variety
// code anywhere in text. lines are the normalized lines of the OCR text.
func RegexFallback(lines []string, text string) (Salvage, bool) {
	label := labelAfterMarker(lines)
	tail := numericTail(text)

	switch {
	case label != "" && tail != "":
		return Salvage{label + " " + tail, constants.ConfLabelAndTail, "VARIETY label + pattern " + tail}, true
	case label != "":
		return Salvage{label, constants.ConfLabelOnly, "VARIETY neighbour line"}, true
	case tail != "":
		re := regexp.MustCompile(`\b[A-Z]{3,}(?:\s+[A-Z]{3,}){0,2}\s+` + regexp.QuoteMeta(tail) + `\b`)
		if m := re.FindString(text); m != "" {
			return Salvage{strings.TrimSpace(m), constants.ConfWordsAndTail, "strong words + " + tail}, true
		}
		return Salvage{tail, constants.ConfTailOnly, "numeric pattern only"}, true
	}
	return Salvage{}, false
}

func labelAfterMarker(lines []string) string {
	pos := -1
	for i, ln := range lines {
		if containsMarker(ln) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ""
	}
	end := min(pos+1+constants.FallbackLookahead, len(lines))
	for _, ln := range lines[pos+1 : end] {
		ln = strings.TrimSpace(ln)
		if ln != "" && reLabelLine.MatchString(ln) {
			return ln
		}
	}
	return ""
}

func containsMarker(line string) bool {
	for _, m := range labelMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func numericTail(text string) string {
	if m := reTailRange.FindString(text); m != "" {
		return m
	}
	return reTailMultiplier.FindString(text)
}
