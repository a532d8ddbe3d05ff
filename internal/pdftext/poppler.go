package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santiagocaneppa/Interview-project/internal/ocr"
)

// PopplerReader shells out to pdftotext. It yields page text only, no tables.
type PopplerReader struct {
	Bin    string
	Runner ocr.Runner
	Logger *slog.Logger
}

func NewPopplerReader(bin string, runner ocr.Runner, logger *slog.Logger) *PopplerReader {
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = ocr.ExecRunner{Logger: logger}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PopplerReader{Bin: bin, Runner: runner, Logger: logger}
}

func (r *PopplerReader) Read(ctx context.Context, path string) (*Document, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, err := r.Runner.Run(ctx, r.Bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	// form feed separates pages; the last one is followed by a trailing \f
	chunks := strings.Split(string(out), "\f")
	if len(chunks) > 1 && strings.TrimSpace(chunks[len(chunks)-1]) == "" {
		chunks = chunks[:len(chunks)-1]
	}
	doc := &Document{Engine: "poppler"}
	for i, c := range chunks {
		doc.Pages = append(doc.Pages, Page{Number: i + 1, Text: strings.TrimSpace(c)})
	}
	return doc, nil
}
