// Package probe inspects a PDF for a usable text layer and page imagery and picks the
// extraction strategy from those two signals.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/ocr"
	"github.com/santiagocaneppa/Interview-project/internal/pdftext"
)

// MinTextLength is the trimmed text length (in characters) below which a document has no text layer.
const MinTextLength = 50

// Result is what the prober saw. Cause is set when probing failed and Type is UNKNOWN.
type Result struct {
	Type       constants.DocumentType
	HasText    bool
	HasImages  bool
	TextLength int
	Pages      int
	Cause      error
}

// ImageSignal answers whether a document carries page imagery.
type ImageSignal interface {
	HasImages(ctx context.Context, path string) (bool, error)
}

type Prober struct {
	text   pdftext.Reader
	images ImageSignal
	logger *slog.Logger
}

func NewProber(text pdftext.Reader, images ImageSignal, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{text: text, images: images, logger: logger}
}

// Decide is the strategy table: text+images MIXED, text TABLE, images IMAGE, else UNKNOWN.
func Decide(hasText, hasImages bool) constants.DocumentType {
	switch {
	case hasText && hasImages:
		return constants.TypeMixed
	case hasText:
		return constants.TypeTable
	case hasImages:
		return constants.TypeImage
	default:
		return constants.TypeUnknown
	}
}

// Probe never fails: a read error yields UNKNOWN with the cause attached.
func (p *Prober) Probe(ctx context.Context, path string) (res Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Type: constants.TypeUnknown, Cause: fmt.Errorf("probe panic: %v", rec)}
		}
		if res.Cause != nil {
			p.logger.Warn("probe.failed", "path", path, "error", res.Cause,
				"elapsed_ms", time.Since(start).Milliseconds())
			return
		}
		p.logger.Info("probe.ok",
			"path", path,
			"type", res.Type,
			"has_text", res.HasText,
			"has_images", res.HasImages,
			"text_len", res.TextLength,
			"pages", res.Pages,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()

	doc, err := p.text.Read(ctx, path)
	if err != nil {
		return Result{Type: constants.TypeUnknown, Cause: fmt.Errorf("read text: %w", err)}
	}
	var b strings.Builder
	for _, pg := range doc.Pages {
		b.WriteString(pg.Text)
	}
	textLen := utf8.RuneCountInString(strings.TrimSpace(b.String()))

	hasImages, err := p.images.HasImages(ctx, path)
	if err != nil {
		return Result{Type: constants.TypeUnknown, TextLength: textLen, Cause: fmt.Errorf("image signal: %w", err)}
	}

	hasText := textLen >= MinTextLength
	return Result{
		Type:       Decide(hasText, hasImages),
		HasText:    hasText,
		HasImages:  hasImages,
		TextLength: textLen,
		Pages:      len(doc.Pages),
	}
}

// RasterSignal reports imagery when rasterization yields at least one page image.
// Almost every valid PDF passes; it mostly separates renderable files from broken ones.
type RasterSignal struct {
	Rasterizer *ocr.Rasterizer
	DPI        int // low values keep probing cheap
}

func (s RasterSignal) HasImages(ctx context.Context, path string) (bool, error) {
	dpi := s.DPI
	if dpi <= 0 {
		dpi = 36
	}
	raster, err := s.Rasterizer.Rasterize(ctx, path, dpi, 0)
	if err != nil {
		return false, err
	}
	defer raster.Cleanup()
	return len(raster.Pages) > 0, nil
}

// EmbeddedSignal reports imagery only when a page references an image XObject.
type EmbeddedSignal struct{}

func (EmbeddedSignal) HasImages(_ context.Context, path string) (bool, error) {
	info, err := pdftext.Inspect(path)
	if err != nil {
		return false, err
	}
	return info.HasImages, nil
}

// NewImageSignal picks the signal by name ("raster" or "embedded").
func NewImageSignal(mode string, rasterizer *ocr.Rasterizer, dpi int) ImageSignal {
	if strings.EqualFold(mode, "embedded") {
		return EmbeddedSignal{}
	}
	return RasterSignal{Rasterizer: rasterizer, DPI: dpi}
}
