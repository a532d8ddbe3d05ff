package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/ocr"
)

// PageOCR is the page-wise OCR capability (ocr.Extractor).
type PageOCR interface {
	ExtractPages(ctx context.Context, path string) (ocr.PagesResult, error)
}

// OCRExtractor recognizes every rendered page and keeps one text block per page.
type OCRExtractor struct {
	ocr    PageOCR
	logger *slog.Logger
}

func NewOCRExtractor(o PageOCR, logger *slog.Logger) *OCRExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRExtractor{ocr: o, logger: logger}
}

func (e *OCRExtractor) Extract(ctx context.Context, path string) (*RawExtraction, error) {
	res, err := e.ocr.ExtractPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	if len(res.Warnings) > 0 {
		e.logger.Warn("extract.ocr.warnings", "path", path, "warnings", res.Warnings)
	}
	if res.Empty() {
		e.logger.Warn("extract.ocr.empty", "path", path, "pages", len(res.Pages))
		return nil, nil
	}
	e.logger.Info("extract.ocr.done", "path", path, "pages", len(res.Pages), "elapsed_ms", res.Duration.Milliseconds())
	return &RawExtraction{Kind: constants.TypeImage, OCRText: res.Pages}, nil
}
