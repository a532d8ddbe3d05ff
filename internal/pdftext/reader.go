// Package pdftext reads the text layer of PDFs: plain page text, positioned glyphs and
// the tables that can be rebuilt from their layout.
package pdftext

import (
	"context"
	"errors"
	"log/slog"
)

// Page is the text layer of one page. Number is 1-based.
type Page struct {
	Number int
	Text   string
	Tables [][][]string
}

// Document is the text layer of a whole PDF, in page order.
type Document struct {
	Pages  []Page
	Engine string // "native" | "poppler"
}

// Text concatenates the page texts.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	var n int
	for _, p := range d.Pages {
		n += len(p.Text)
	}
	b := make([]byte, 0, n+len(d.Pages))
	for i, p := range d.Pages {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, p.Text...)
	}
	return string(b)
}

// Reader loads the text layer of a PDF.
type Reader interface {
	Read(ctx context.Context, path string) (*Document, error)
}

// FallbackReader tries Primary and, when it fails, Secondary.
type FallbackReader struct {
	Primary   Reader
	Secondary Reader
	Logger    *slog.Logger
}

func (f FallbackReader) Read(ctx context.Context, path string) (*Document, error) {
	doc, err := f.Primary.Read(ctx, path)
	if err == nil || f.Secondary == nil {
		return doc, err
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("pdftext.primary.failed", "path", path, "error", err)
	doc2, err2 := f.Secondary.Read(ctx, path)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return doc2, nil
}
