package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

func (c *Client) Name() string { return "openai" }

// Choose implements llm.Chooser using chat/completions in JSON mode.
func (c *Client) Choose(ctx context.Context, req llm.ChooseRequest) (llm.Reply, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.choose.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.RawText),
		"candidates", len(req.Candidates),
	)

	schema := llm.BuildReplyJSONSchema(req.IDs())
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Warn("llm.choose.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Warn("llm.choose.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, raw, fmt.Errorf("%w: decode openai response: %v", llm.ErrNoJSON, err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		c.logger.Warn("llm.choose.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, raw, llm.ErrEmptyReply
	}

	out, content, err := llm.ParseReply(cc.Choices[0].Message.Content, req.IDs(), c.logger)
	if err != nil {
		c.logger.Warn("llm.choose.invalid_reply",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, content, err
	}

	c.logger.Info("llm.choose.ok",
		"req_id", rid,
		"id", out.ID,
		"variedad", out.Variety,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
