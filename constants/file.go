package constants

import "strings"

// PDFExt is the only extension picked up from an input directory.
const PDFExt = "pdf"

// AllowedExtensions holds the extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	PDFExt: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// DefaultOutputFile is the consolidated dataset file name inside the output directory.
const DefaultOutputFile = "resultado_imoveis.csv"
