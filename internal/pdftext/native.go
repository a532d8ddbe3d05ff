package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeReader parses PDFs in-process with ledongthuc/pdf and rebuilds tables from glyph positions.
type NativeReader struct {
	Layout LayoutOptions
	Logger *slog.Logger
}

func NewNativeReader(opts LayoutOptions, logger *slog.Logger) *NativeReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeReader{Layout: opts, Logger: logger}
}

func (r *NativeReader) Read(ctx context.Context, path string) (doc *Document, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc = &Document{Engine: "native"}
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		glyphs := toGlyphs(page.Content().Text)
		lines := GroupLines(glyphs, r.Layout)

		text, terr := page.GetPlainText(nil)
		if terr != nil || strings.TrimSpace(text) == "" {
			text = LinesText(lines)
		}

		doc.Pages = append(doc.Pages, Page{
			Number: i,
			Text:   strings.TrimSpace(text),
			Tables: DetectTables(lines, r.Layout),
		})
	}

	r.Logger.Debug("pdftext.native.ok", "path", path, "pages", len(doc.Pages))
	return doc, nil
}

func toGlyphs(texts []pdf.Text) []Glyph {
	out := make([]Glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		out = append(out, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return out
}
