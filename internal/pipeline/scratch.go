package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// stage copies src into a fresh directory under dir, keeping the file name, and returns the
// copy's path. unstage removes that directory.
func stage(dir, src string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	work, err := os.MkdirTemp(dir, "doc-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	dst := filepath.Join(work, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		_ = os.RemoveAll(work)
		return "", fmt.Errorf("create scratch copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.RemoveAll(work)
		return "", fmt.Errorf("copy to scratch: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.RemoveAll(work)
		return "", fmt.Errorf("close scratch copy: %w", err)
	}
	return dst, nil
}

func unstage(path string) error {
	return os.RemoveAll(filepath.Dir(path))
}
