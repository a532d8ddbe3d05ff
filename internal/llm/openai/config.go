package openai

import (
	"log/slog"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/santiagocaneppa/Interview-project/internal/llm"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // empty keeps the SDK default
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // per attempt
	MaxRetries  int           // transient failures only
	RatePerMin  int           // 0 disables the limiter
	RetryDelay  time.Duration // first backoff interval
}

type Client struct {
	cfg     Config
	api     openai.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Retries are driven by backoff in Complete so they share the limiter and the logs.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	var limiter *rate.Limiter
	if cfg.RatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMin)/60.0), 1)
	}

	return &Client{
		cfg:     cfg,
		api:     openai.NewClient(opts...),
		limiter: limiter,
		logger:  logger,
	}
}

var _ llm.Completer = (*Client)(nil)
