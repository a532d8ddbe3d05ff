// Package normalize turns raw extraction into canonical unit records with a generative model
// and validates the reply against the record schema.
package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/santiagocaneppa/Interview-project/internal/entity"
	"github.com/santiagocaneppa/Interview-project/internal/extract"
	"github.com/santiagocaneppa/Interview-project/internal/llm"
)

// StructuralError describes a reply that could not be turned into records.
type StructuralError struct {
	Reason     string          `json:"reason"` // "unparseable" | "not_array" | "schema"
	Detail     string          `json:"detail"`
	Violations []llm.Violation `json:"violations,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error (%s): %s", e.Reason, e.Detail)
}

// Result holds either validated records or the structural problem with the reply.
// Records may be empty when the model found no units.
type Result struct {
	Records []entity.Record
	Invalid *StructuralError
}

func (r Result) OK() bool { return r.Invalid == nil }

type Config struct {
	// Lenient repairs common contract slips before giving up on a reply.
	Lenient bool
}

type Normalizer struct {
	cfg    Config
	llm    llm.Completer
	logger *slog.Logger
}

func NewNormalizer(cfg Config, completer llm.Completer, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{cfg: cfg, llm: completer, logger: logger}
}

// Normalize asks the model for records. The error return is only for transport or context
// failures; a bad reply comes back as Result.Invalid.
func (n *Normalizer) Normalize(ctx context.Context, raw *extract.RawExtraction) (Result, error) {
	start := time.Now()
	if raw.Empty() {
		return Result{}, nil
	}

	req := llm.BuildNormalizePrompt(llm.NormalizeInput{
		Tables:  raw.Tables,
		Context: raw.Context,
		OCRText: raw.OCRText,
	})
	reply, err := n.llm.Complete(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("normalize: %w", err)
	}

	res := n.parse(reply)
	if res.Invalid != nil {
		n.logger.Warn("llm.normalize.invalid",
			"kind", raw.Kind,
			"reason", res.Invalid.Reason,
			"detail", res.Invalid.Detail,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res, nil
	}
	n.logger.Info("llm.normalize.ok",
		"kind", raw.Kind,
		"records", len(res.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (n *Normalizer) parse(reply string) Result {
	content := []byte(llm.StripCodeFence(reply))

	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return invalid("unparseable", err, reply)
	}
	if _, ok := doc.([]any); !ok {
		return invalid("not_array", llm.ErrNotArray, reply)
	}

	if err := llm.ValidateRecords(doc); err != nil {
		if !n.cfg.Lenient {
			return invalid("schema", err, reply)
		}
		n.logger.Debug("llm.normalize.strict_rejected", "error", err)
		cleaned, changed, sErr := llm.SanitizeRecords(content)
		if sErr != nil {
			return invalid("schema", sErr, reply)
		}
		if vErr := llm.ValidateRecordsJSON(cleaned); vErr != nil {
			return invalid("schema", vErr, reply)
		}
		n.logger.Warn("llm.normalize.lenient_sanitize_applied", "changes", changed)
		content = cleaned
	}

	var records []entity.Record
	if err := json.Unmarshal(content, &records); err != nil {
		return invalid("unparseable", err, reply)
	}
	return Result{Records: records}
}

func invalid(reason string, err error, raw string) Result {
	se := &StructuralError{Reason: reason, Detail: err.Error(), Raw: raw}
	var schemaErr *llm.SchemaError
	if errors.As(err, &schemaErr) {
		se.Violations = schemaErr.Violations
	}
	return Result{Invalid: se}
}
