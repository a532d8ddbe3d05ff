package extract

import (
	"context"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// RawExtraction is whatever an extractor pulled out of one document, before normalization.
// TABLE fills Tables and Context, IMAGE fills OCRText, MIXED may fill all three.
type RawExtraction struct {
	Kind    constants.DocumentType `json:"kind"`
	Tables  [][][]string           `json:"tables,omitempty"`
	Context []string               `json:"context,omitempty"`
	OCRText []string               `json:"ocr_text,omitempty"`
}

func (r *RawExtraction) Empty() bool {
	return r == nil || (len(r.Tables) == 0 && len(r.Context) == 0 && len(r.OCRText) == 0)
}

// Extractor turns a document into raw extraction. A nil result with a nil error means
// nothing usable was found.
type Extractor interface {
	Extract(ctx context.Context, path string) (*RawExtraction, error)
}
