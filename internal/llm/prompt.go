package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/label-matcher/constants"
)

const maxPromptText = 3000

// BuildSystemPrompt fixes the task: pick exactly one candidate, never invent.
func BuildSystemPrompt() string {
	parts := []string{
		"You identify flower varieties on shipping labels from noisy OCR text.",
		"Pick exactly one candidate from the shortlist the user provides.",
		"Never invent names: the answer must be copied from the shortlist, including its id.",
		"If nothing in the shortlist is supported by the text, pick the closest candidate and give a low conf.",
		fmt.Sprintf("Respond with strict JSON only: {\"id\": string, \"variedad\": string, \"cultivo\": string, \"cliente\": string, \"conf\": number 0..1, \"evidencia\": string of at most %d characters}.", constants.EvidenceMaxLen),
		"Do not wrap the JSON in markdown and do not add commentary.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt lays out the OCR text and the shortlist with explicit ids.
func BuildUserPrompt(req ChooseRequest) string {
	var b strings.Builder
	b.WriteString("OCR text (raw):\n")
	b.WriteString(clip(req.RawText, maxPromptText))
	b.WriteString("\n\nOCR text (normalized):\n")
	b.WriteString(clip(req.NormalizedText, maxPromptText))
	if req.Flight != "" {
		b.WriteString("\n\nDetected flight: ")
		b.WriteString(req.Flight)
	}
	if req.DetectedCrop != "" {
		b.WriteString("\nDetected crop: ")
		b.WriteString(req.DetectedCrop)
	}
	b.WriteString("\n\nShortlist:\n")
	for _, c := range req.Candidates {
		fmt.Fprintf(&b, "- id=%s | variedad=%s", c.ID, c.Variety)
		if c.Crop != "" {
			fmt.Fprintf(&b, " | cultivo=%s", c.Crop)
		}
		if c.Client != "" {
			fmt.Fprintf(&b, " | cliente=%s", c.Client)
		}
		if c.Flight != "" {
			fmt.Fprintf(&b, " | vuelo=%s", c.Flight)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn ONLY the JSON object.")
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
