// Package ollama implements llm.Chooser on a local Ollama /api/chat endpoint.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

func (c *Client) Name() string { return "ollama" }

// Choose sends the shortlist to the model and returns the validated reply.
func (c *Client) Choose(ctx context.Context, req llm.ChooseRequest) (llm.Reply, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.choose.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"text_len", len(req.RawText),
		"candidates", len(req.Candidates),
	)

	body := map[string]any{
		"model":  c.cfg.Model,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
		},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		c.logger.Warn("llm.choose.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, raw, err
	}

	var chat struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &chat); err != nil {
		c.logger.Warn("llm.choose.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Reply{}, raw, fmt.Errorf("%w: decode ollama response: %v", llm.ErrNoJSON, err)
	}
	if strings.TrimSpace(chat.Message.Content) == "" {
		return llm.Reply{}, raw, llm.ErrEmptyReply
	}

	out, content, err := llm.ParseReply(chat.Message.Content, req.IDs(), c.logger)
	if err != nil {
		c.logger.Warn("llm.choose.invalid_reply",
			"req_id", rid, "error", err, "content", llm.Truncate(chat.Message.Content, 300),
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
