package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Raster is a set of page images living in a private temp dir.
type Raster struct {
	Dir   string
	Pages []string // prefix-1.png, prefix-2.png, ... in page order
}

func (r *Raster) Cleanup() {
	if r == nil || r.Dir == "" {
		return
	}
	_ = os.RemoveAll(r.Dir)
}

type Rasterizer struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

func NewRasterizer(bin string, runner Runner, logger *slog.Logger) *Rasterizer {
	if bin == "" {
		bin = "pdftoppm"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{bin: bin, runner: runner, logger: logger}
}

// Rasterize renders the pages of a PDF to PNG. The caller owns Cleanup.
func (r *Rasterizer) Rasterize(ctx context.Context, path string, dpi, maxPages int) (*Raster, error) {
	tmpDir, err := os.MkdirTemp("", "imv-pp-*")
	if err != nil {
		return nil, err
	}
	raster := &Raster{Dir: tmpDir}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", dpi), "-png"}
	if maxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", maxPages))
	}
	args = append(args, path, prefix)

	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, err := r.runner.Run(ctx, r.bin, args...); err != nil {
		raster.Cleanup()
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	raster.Pages = matches
	return raster, nil
}
