package pdftext

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Info is the structural summary of a PDF.
type Info struct {
	Pages      int
	ImagePages int // pages referencing at least one image XObject
	HasImages  bool
}

// Inspect reads the PDF object graph with pdfcpu in relaxed validation mode.
func Inspect(path string) (info Info, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return Info{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	info.Pages = ctx.PageCount
	if ctx.Optimize != nil {
		for p := 1; p <= ctx.PageCount; p++ {
			if len(pdfcpu.ImageObjNrs(ctx, p)) > 0 {
				info.ImagePages++
			}
		}
	}
	info.HasImages = info.ImagePages > 0 || hasImageStream(ctx)
	return info, nil
}

func hasImageStream(ctx *model.Context) bool {
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}
