package consolidate

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheet = "Imoveis"

// XLSXExporter mirrors the CSV dataset into a workbook, so the spreadsheet always holds
// every row the CSV holds.
type XLSXExporter struct {
	logger *slog.Logger
}

func NewXLSXExporter(logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{logger: logger}
}

// XLSXPath is the workbook path that sits beside a CSV dataset.
func XLSXPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
}

// Export reads the dataset at csvPath and (re)writes the workbook at XLSXPath(csvPath).
func (x *XLSXExporter) Export(csvPath string) (string, error) {
	start := time.Now()
	in, err := os.Open(csvPath)
	if err != nil {
		return "", fmt.Errorf("open dataset: %w", err)
	}
	defer in.Close()

	cr := csv.NewReader(in)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read dataset: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}

	priceCol := -1
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if i == 0 {
				if v == "valor" {
					priceCol = j
				}
				_ = f.SetCellValue(sheet, cell, v)
				continue
			}
			if j == priceCol {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					_ = f.SetCellValue(sheet, cell, n)
					continue
				}
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // development
	_ = f.SetColWidth(sheet, "B", "C", 16) // unit, availability
	_ = f.SetColWidth(sheet, "D", "D", 14) // price
	_ = f.SetColWidth(sheet, "E", "E", 48) // remarks

	out := XLSXPath(csvPath)
	if err := f.SaveAs(out); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}

	x.logger.Info("consolidate.xlsx.ok",
		"path", out,
		"rows", max(len(rows)-1, 0),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
