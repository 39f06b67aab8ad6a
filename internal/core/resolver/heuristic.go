package resolver

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/core/signals"
)

const minWordLen = 3

// Score rates a candidate against normalized OCR text:
// 1.0 on containment, else the share of the candidate's own variety codes
// found in the text, else (no code found) the share of its words (3+ runes)
// that partially match an OCR token in either direction.
func Score(text string, tokens []string, c catalog.Record) float64 {
	if c.NormVariety == "" {
		return 0
	}
	if strings.Contains(text, c.NormVariety) {
		return 1.0
	}
	if codes := signals.Patterns(c.NormVariety); len(codes) > 0 {
		hits := 0
		for _, code := range codes {
			if strings.Contains(text, code) {
				hits++
			}
		}
		if hits > 0 {
			return float64(hits) / float64(len(codes))
		}
	}
	return wordOverlap(tokens, c.NormVariety)
}

func wordOverlap(tokens []string, name string) float64 {
	words, hits := 0, 0
	for _, w := range strings.Fields(name) {
		if utf8.RuneCountInString(w) < minWordLen {
			continue
		}
		words++
		for _, tok := range tokens {
			if strings.Contains(tok, w) || strings.Contains(w, tok) {
				hits++
				break
			}
		}
	}
	if words == 0 {
		return 0
	}
	return float64(hits) / float64(words)
}

// Heuristic returns the strictly best scoring candidate (first wins on ties)
// when its score clears the threshold.
func Heuristic(text string, shortlist []catalog.Record) (catalog.Record, float64, bool) {
	tokens := strings.Fields(text)
	best, bestScore := -1, 0.0
	for i, c := range shortlist {
		if s := Score(text, tokens, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore <= constants.HeuristicThreshold {
		return catalog.Record{}, bestScore, false
	}
	return shortlist[best], bestScore, true
}

func heuristicEvidence(score float64) string {
	return fmt.Sprintf("heuristic match (%d%%)", int(math.Round(score*100)))
}
