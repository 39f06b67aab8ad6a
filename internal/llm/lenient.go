package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject pulls a JSON object out of a model message. It tries the
// message as-is, then without markdown fences, then the first balanced {...}
// block.
func ExtractJSONObject(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil, fmt.Errorf("%w: empty content", ErrNoJSON)
	}
	if isObject(s) {
		return []byte(s), nil
	}
	if unfenced := stripFences(s); unfenced != s && isObject(unfenced) {
		return []byte(unfenced), nil
	}
	if block, ok := firstBalancedObject(s); ok && isObject(block) {
		return []byte(block), nil
	}
	return nil, fmt.Errorf("%w: no parsable object in %d bytes", ErrNoJSON, len(s))
}

func isObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

func stripFences(s string) string {
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstBalancedObject scans for the first '{' and returns the text up to its
// matching '}', ignoring braces inside string literals.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
