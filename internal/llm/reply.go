package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ParseReply turns a model message into a Reply: salvage the JSON object,
// sanitize it, then validate it against the shortlist-bound schema.
func ParseReply(content string, ids []string, logger *slog.Logger) (Reply, []byte, error) {
	obj, err := ExtractJSONObject(content)
	if err != nil {
		return Reply{}, nil, err
	}
	cleaned, _, err := NormalizeAndSanitizeReply(obj, logger)
	if err != nil {
		return Reply{}, obj, err
	}
	if err := ValidateJSONAgainstSchema(BuildReplyJSONSchema(ids), cleaned); err != nil {
		return Reply{}, cleaned, err
	}
	var out Reply
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return Reply{}, cleaned, fmt.Errorf("%w: unmarshal reply: %v", ErrNoJSON, err)
	}
	return out, cleaned, nil
}
