package ollama

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

// Config for the Ollama client.
type Config struct {
	BaseURL        string        // default http://localhost:11434
	Model          string        // default phi3
	Temperature    float32       // 0..1
	ConnectTimeout time.Duration // dial timeout
	Timeout        time.Duration // whole exchange
	HTTPClient     *http.Client  // optional, overrides the timeouts above
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultOllamaModel
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = constants.OracleConnectTimeout
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.OracleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = llm.NewHTTPClient(cfg.ConnectTimeout, cfg.Timeout)
	}
	return &Client{cfg: cfg, http: hc, logger: logger}
}
