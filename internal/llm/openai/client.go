package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"

	"github.com/santiagocaneppa/Interview-project/internal/llm"
)

var errNoChoices = errors.New("no choices in openai response")

// Complete implements llm.Completer with chat/completions. Transient failures (429, 5xx,
// per-attempt timeouts, network errors) are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	attempt := 0

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"purpose", req.Purpose,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(req.System)+len(req.User),
	)

	op := func() (string, error) {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", backoff.Permanent(err)
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		resp, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: c.cfg.Model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(req.System),
				openai.UserMessage(req.User),
			},
			Temperature: openai.Float(float64(c.cfg.Temperature)),
		})
		if err != nil {
			if ctx.Err() == nil && isTransient(err) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(errNoChoices)
		}
		return resp.Choices[0].Message.Content, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryDelay
	content, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("llm.complete.retry",
				"req_id", rid, "attempt", attempt, "error", err, "next_in_ms", next.Milliseconds())
		}),
	)
	if err != nil {
		c.logger.Error("llm.complete.failed",
			"req_id", rid,
			"purpose", req.Purpose,
			"attempts", attempt,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai %s: %w", req.Purpose, err)
	}

	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"purpose", req.Purpose,
		"attempts", attempt,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode == http.StatusRequestTimeout ||
			apiErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
