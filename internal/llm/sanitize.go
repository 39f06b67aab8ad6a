package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-matcher/constants"
)

// NormalizeAndSanitizeReply
// - Renames known synonyms (variety -> variedad, confidence -> conf, ...)
// - Coerces numeric ids to strings and string confidences to numbers
// - Drops null/empty optionals and clamps conf into 0..1
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeReply(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("%w: sanitize: decode: %v", ErrNoJSON, err)
	}

	changed := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}

	// 1) rename synonyms
	for _, k := range []string{"variety", "name", "nombre", "variety_name"} {
		renamed(k, "variedad")
	}
	renamed("crop", "cultivo")
	renamed("client", "cliente")
	renamed("customer", "cliente")
	renamed("confidence", "conf")
	renamed("confianza", "conf")
	renamed("evidence", "evidencia")
	renamed("reason", "evidencia")
	renamed("candidate_id", "id")
	renamed("ID", "id")

	// 2) id: numbers become strings, blanks disappear
	if v, ok := m["id"]; ok {
		switch t := v.(type) {
		case float64:
			m["id"] = strconv.FormatFloat(t, 'f', -1, 64)
			changed = append(changed, "id(number)")
		case string:
			if s := strings.TrimSpace(t); s != "" {
				m["id"] = s
			} else {
				delete(m, "id")
				changed = append(changed, "id(empty)")
			}
		default:
			delete(m, "id")
			changed = append(changed, "id(type)")
		}
	}

	// 3) text fields are trimmed; nulls and non-strings dropped
	for _, k := range []string{"variedad", "cultivo", "cliente", "evidencia"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			delete(m, k)
			changed = append(changed, k+"(type)")
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" && k != "variedad" {
			delete(m, k)
			changed = append(changed, k+"(empty)")
			continue
		}
		if k == "evidencia" {
			s = Truncate(s, constants.EvidenceMaxLen)
		}
		m[k] = s
	}

	// 4) conf: accept "0.8" and "80%", then clamp
	if v, ok := m["conf"]; ok {
		f, parsed := toFloat(v)
		if !parsed {
			delete(m, "conf")
			changed = append(changed, "conf(type)")
		} else {
			m["conf"] = ClampConfidence(f)
		}
	}

	// 5) remove unknown keys
	allowed := []string{"id", "variedad", "cultivo", "cliente", "conf", "evidencia"}
	for k := range maps.Clone(m) {
		if !slices.Contains(allowed, k) {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	if len(changed) > 0 {
		logger.Debug("llm.reply.sanitized", "changes", changed)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, changed, nil
}

// ClampConfidence clamps f into 0..1.
func ClampConfidence(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		percent := strings.HasSuffix(s, "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if percent {
			f /= 100
		}
		return f, err == nil
	}
	return 0, false
}
