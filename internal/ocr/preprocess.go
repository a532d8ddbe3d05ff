package ocr

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Grayscale drops color using imaging's luminance weights.
func Grayscale(src image.Image) *image.NRGBA {
	return imaging.Grayscale(src)
}

// AdjustLinear maps every channel through |v*alpha + beta|, saturating at 255.
func AdjustLinear(src image.Image, alpha, beta float64) *image.NRGBA {
	if alpha == 1 && beta == 0 {
		return imaging.Clone(src)
	}
	var lut [256]uint8
	for v := range lut {
		lut[v] = uint8(math.Round(math.Min(255, math.Abs(float64(v)*alpha+beta))))
	}
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

// OtsuThreshold picks the luminance cutoff that maximizes between-class variance.
func OtsuThreshold(img image.Image) uint8 {
	hist := imaging.Histogram(img) // normalized: entries sum to 1
	var mean float64
	for i, p := range hist {
		mean += float64(i) * p
	}
	if mean == 0 && hist[0] == 0 {
		return 127
	}

	var wB, sumB, best float64
	threshold := 0
	for t, p := range hist {
		wB += p
		if wB == 0 {
			continue
		}
		wF := 1 - wB
		if wF <= 1e-12 {
			break
		}
		sumB += float64(t) * p
		mB := sumB / wB
		mF := (mean - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps pixels whose gray level is above threshold to white and the rest to black.
// The input is expected to be grayscale already.
func Binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{A: 255}
	})
}

// Preprocess is grayscale, linear contrast, then Otsu binarization.
func Preprocess(src image.Image, alpha, beta float64) *image.NRGBA {
	g := AdjustLinear(Grayscale(src), alpha, beta)
	return Binarize(g, OtsuThreshold(g))
}

// PreprocessFile reads a page image and writes the binarized version to out. The output
// format follows out's extension.
func PreprocessFile(in, out string, alpha, beta float64) error {
	src, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}
	if err := imaging.Save(Preprocess(src, alpha, beta), out); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return nil
}
