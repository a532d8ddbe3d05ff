package extract

import (
	"context"
	"log/slog"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// MixedExtractor runs the text-layer and OCR extractors independently and unions their output.
// A failing side counts as having found nothing.
type MixedExtractor struct {
	tables Extractor
	ocr    Extractor
	logger *slog.Logger
}

func NewMixedExtractor(tables, ocr Extractor, logger *slog.Logger) *MixedExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MixedExtractor{tables: tables, ocr: ocr, logger: logger}
}

func (e *MixedExtractor) Extract(ctx context.Context, path string) (*RawExtraction, error) {
	tbl := e.side(ctx, "table", e.tables, path)
	txt := e.side(ctx, "ocr", e.ocr, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &RawExtraction{Kind: constants.TypeMixed}
	if tbl != nil {
		out.Tables = tbl.Tables
		out.Context = tbl.Context
	}
	if txt != nil {
		out.OCRText = txt.OCRText
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

func (e *MixedExtractor) side(ctx context.Context, name string, x Extractor, path string) *RawExtraction {
	res, err := x.Extract(ctx, path)
	if err != nil {
		e.logger.Warn("extract.mixed.side_failed", "side", name, "path", path, "error", err)
		return nil
	}
	return res
}
