package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// MinDPI is the lowest resolution used for recognition.
const MinDPI = 300

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "por"
	TessdataDir   string
	DPI           int // rasterization DPI, raised to MinDPI when lower
	MaxPages      int // 0 = no limit

	PSM int // 6 = assume a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// Linear contrast applied before thresholding: v*Contrast + Brightness.
	Contrast   float64
	Brightness float64
}

// PagesResult carries one trimmed text block per rasterized page, in page order.
type PagesResult struct {
	Pages    []string
	Language string
	Duration time.Duration
	Warnings []string
}

// Empty reports whether no page produced any text.
func (r PagesResult) Empty() bool {
	for _, p := range r.Pages {
		if p != "" {
			return false
		}
	}
	return true
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "por"
	}
	if cfg.DPI < MinDPI {
		cfg.DPI = MinDPI
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	if cfg.Contrast <= 0 {
		cfg.Contrast = 1
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Rasterizer exposes the extractor's pdftoppm settings for callers that only need page images.
func (e *Extractor) Rasterizer() *Rasterizer {
	return NewRasterizer(e.cfg.Pdftoppm, e.runner, e.logger)
}

// ExtractPages rasterizes every page, binarizes it and runs tesseract on the result.
// A page whose recognition fails yields an empty block and a warning.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (PagesResult, error) {
	start := time.Now()
	res := PagesResult{Language: e.cfg.TesseractLang}

	raster, err := e.Rasterizer().Rasterize(ctx, path, e.cfg.DPI, e.cfg.MaxPages)
	if err != nil {
		return res, fmt.Errorf("rasterize: %w", err)
	}
	defer raster.Cleanup()

	for i, img := range raster.Pages {
		page := i + 1
		prepped := filepath.Join(raster.Dir, fmt.Sprintf("bin-%04d.png", page))
		if err := PreprocessFile(img, prepped, e.cfg.Contrast, e.cfg.Brightness); err != nil {
			e.logger.Warn("ocr.preprocess.failed", "path", path, "page", page, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: preprocess: %v", page, err))
			prepped = img
		}

		txt, err := e.tesseract(ctx, prepped)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", page, err))
			res.Pages = append(res.Pages, "")
			continue
		}
		txt = strings.TrimSpace(Normalize(txt))
		e.logger.Debug("ocr.page.ok", "path", path, "page", page, "chars", len(txt))
		res.Pages = append(res.Pages, txt)
	}

	res.Duration = time.Since(start)
	e.logger.Info("ocr.extract.ok",
		"path", path,
		"pages", len(res.Pages),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l por --psm 6
	out, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
