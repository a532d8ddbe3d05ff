package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/pdftext"
)

// TableExtractor reads the text layer: page text as context plus layout-detected tables.
type TableExtractor struct {
	reader pdftext.Reader
	logger *slog.Logger
}

func NewTableExtractor(reader pdftext.Reader, logger *slog.Logger) *TableExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExtractor{reader: reader, logger: logger}
}

func (e *TableExtractor) Extract(ctx context.Context, path string) (*RawExtraction, error) {
	start := time.Now()
	doc, err := e.reader.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read text layer: %w", err)
	}

	out := &RawExtraction{Kind: constants.TypeTable}
	for _, pg := range doc.Pages {
		if txt := strings.TrimSpace(pg.Text); txt != "" {
			out.Context = append(out.Context, txt)
		}
		for _, tbl := range pg.Tables {
			out.Tables = append(out.Tables, trimTable(tbl))
		}
	}

	e.logger.Info("extract.table.done",
		"path", path,
		"engine", doc.Engine,
		"pages", len(doc.Pages),
		"tables", len(out.Tables),
		"context", len(out.Context),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

func trimTable(tbl [][]string) [][]string {
	rows := make([][]string, len(tbl))
	for i, row := range tbl {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = strings.TrimSpace(cell)
		}
	}
	return rows
}
