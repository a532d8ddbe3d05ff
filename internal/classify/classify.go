// Package classify resolves a document to a definite extraction strategy, asking the model
// only when the content signals are inconclusive.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/llm"
	"github.com/santiagocaneppa/Interview-project/internal/probe"
)

// ErrUnrecognizedLabel is returned when the model answers with anything but a strategy token.
var ErrUnrecognizedLabel = errors.New("unrecognized classification label")

// Prober is the content inspection step.
type Prober interface {
	Probe(ctx context.Context, path string) probe.Result
}

type Classifier struct {
	prober Prober
	llm    llm.Completer
	logger *slog.Logger
}

func NewClassifier(prober Prober, completer llm.Completer, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{prober: prober, llm: completer, logger: logger}
}

// Classify never returns UNKNOWN. A definite probe result is final; otherwise the model gets
// one request with the file name and its reply must be exactly one strategy token.
func (c *Classifier) Classify(ctx context.Context, path string) (constants.DocumentType, error) {
	res := c.prober.Probe(ctx, path)
	if res.Type.Definite() {
		return res.Type, nil
	}

	name := filepath.Base(path)
	c.logger.Info("classify.ai.start", "doc", name, "probe_cause", res.Cause)

	reply, err := c.llm.Complete(ctx, llm.BuildClassifyPrompt(name))
	if err != nil {
		return constants.TypeUnknown, fmt.Errorf("classify %s: %w", name, err)
	}

	t, ok := constants.ParseDocumentType(reply)
	if !ok {
		c.logger.Warn("classify.ai.unrecognized", "doc", name, "reply", truncate(reply, 80))
		return constants.TypeUnknown, fmt.Errorf("%w: %q", ErrUnrecognizedLabel, truncate(reply, 80))
	}

	c.logger.Info("classify.ai.ok", "doc", name, "type", t)
	return t, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
