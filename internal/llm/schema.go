package llm

import "github.com/joseph-ayodele/label-matcher/constants"

// BuildReplyJSONSchema returns the JSON-Schema an oracle reply must satisfy.
// When ids is non-empty the id field is constrained to the shortlist.
func BuildReplyJSONSchema(ids []string) map[string]any {
	id := map[string]any{"type": "string", "minLength": 1}
	if len(ids) > 0 {
		id["enum"] = ids
	}
	props := map[string]any{
		"id":        id,
		"variedad":  map[string]any{"type": "string", "minLength": 1},
		"cultivo":   map[string]any{"type": "string"},
		"cliente":   map[string]any{"type": "string"},
		"conf":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"evidencia": map[string]any{"type": "string", "maxLength": constants.EvidenceMaxLen},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"variedad"},
	}
}
