package extract

import (
	"fmt"

	"github.com/santiagocaneppa/Interview-project/constants"
)

// Router picks the extractor for a classified document.
type Router struct {
	Table Extractor
	Image Extractor
	Mixed Extractor
}

func (r Router) For(t constants.DocumentType) (Extractor, error) {
	var x Extractor
	switch t {
	case constants.TypeTable:
		x = r.Table
	case constants.TypeImage:
		x = r.Image
	case constants.TypeMixed:
		x = r.Mixed
	}
	if x == nil {
		return nil, fmt.Errorf("no extractor for document type %q", t)
	}
	return x, nil
}
