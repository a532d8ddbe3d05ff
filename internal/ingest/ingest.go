// Package ingest discovers input PDFs: a one-shot directory listing and a watcher for
// files dropped in later.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// DirStats summarizes a directory listing.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Hidden  uint32
}

// ListPDFs returns the PDFs directly inside dir, sorted by file name. Subdirectories,
// hidden files and other extensions are ignored.
func ListPDFs(dir string) ([]string, DirStats, error) {
	var stats DirStats
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stats.Scanned++
		if IsHidden(e.Name()) {
			stats.Hidden++
			continue
		}
		if !Allowed(e.Name()) {
			continue
		}
		stats.Matched++
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, stats, nil
}

// Allowed reports whether path has an extension accepted for processing.
func Allowed(path string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
