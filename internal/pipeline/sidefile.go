package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/entity"
	"github.com/santiagocaneppa/Interview-project/internal/extract"
	"github.com/santiagocaneppa/Interview-project/internal/normalize"
)

// SideFile is the per-document audit artifact: what was extracted and what it became.
type SideFile struct {
	Document   string                     `json:"document"`
	Type       constants.DocumentType     `json:"type"`
	Extraction *extract.RawExtraction     `json:"extraction,omitempty"`
	Records    []entity.Record            `json:"records"`
	Invalid    *normalize.StructuralError `json:"invalid,omitempty"`
}

func sideFilePath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// WriteSideFile writes sf as indented UTF-8 JSON to <dir>/<name>.json.
func WriteSideFile(dir string, sf SideFile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("side-file dir: %w", err)
	}
	b, err := json.MarshalIndent(sf, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal side-file: %w", err)
	}
	path := sideFilePath(dir, sf.Document)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write side-file: %w", err)
	}
	return path, nil
}

func ReadSideFile(path string) (SideFile, error) {
	var sf SideFile
	b, err := os.ReadFile(path)
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(b, &sf); err != nil {
		return sf, fmt.Errorf("decode side-file: %w", err)
	}
	return sf, nil
}
