// Package consolidate writes the run's records to the shared dataset file.
package consolidate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/santiagocaneppa/Interview-project/internal/entity"
)

// ErrNoRecords is returned when there is nothing to write; no file is touched.
var ErrNoRecords = errors.New("no records to consolidate")

// Separator is the dataset column delimiter.
const Separator = ';'

// Header is the dataset header row.
var Header = []string{"nome_empreendimento", "unidade", "disponibilidade", "valor", "observações"}

type Summary struct {
	Path    string
	Rows    int
	Created bool
}

type CSVWriter struct {
	logger *slog.Logger
}

func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// Write appends records to the dataset at path, creating it with a header when absent.
// Rows are rendered in memory first and written with a single call. Records are never
// deduplicated against what the file already holds.
func (w *CSVWriter) Write(path string, records []entity.Record) (Summary, error) {
	start := time.Now()
	if len(records) == 0 {
		w.logger.Warn("consolidate.empty", "path", path)
		return Summary{}, ErrNoRecords
	}

	created := true
	if st, err := os.Stat(path); err == nil {
		if st.IsDir() {
			return Summary{}, fmt.Errorf("dataset path %s is a directory", path)
		}
		created = st.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return Summary{}, fmt.Errorf("stat dataset: %w", err)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = Separator
	if created {
		_ = cw.Write(Header)
	}
	for _, r := range records {
		_ = cw.Write([]string{
			r.DevelopmentName,
			r.Unit,
			string(r.Availability),
			NormalizePrice(r.Price),
			r.RemarksOrEmpty(),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return Summary{}, fmt.Errorf("render rows: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Summary{}, fmt.Errorf("open dataset: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return Summary{}, fmt.Errorf("write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return Summary{}, fmt.Errorf("close dataset: %w", err)
	}

	w.logger.Info("consolidate.csv.ok",
		"path", path,
		"rows", len(records),
		"created", created,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Summary{Path: path, Rows: len(records), Created: created}, nil
}

// NormalizePrice turns "492.030,00" into "492030.00". Text without separators passes through.
func NormalizePrice(p string) string {
	return strings.ReplaceAll(strings.ReplaceAll(p, ".", ""), ",", ".")
}
