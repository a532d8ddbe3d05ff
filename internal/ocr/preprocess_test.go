package ocr

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoToneGray(dark, light uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 10, 2))
	for x := 0; x < 10; x++ {
		for y := 0; y < 2; y++ {
			if x < 3 {
				g.SetGray(x, y, color.Gray{Y: dark})
			} else {
				g.SetGray(x, y, color.Gray{Y: light})
			}
		}
	}
	return g
}

func TestOtsuSeparatesTwoClasses(t *testing.T) {
	g := twoToneGray(60, 190)
	thr := OtsuThreshold(g)
	assert.GreaterOrEqual(t, thr, uint8(60))
	assert.Less(t, thr, uint8(190))

	b := Binarize(g, thr)
	assert.Equal(t, uint8(0), b.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), b.NRGBAAt(9, 1).R)
}

func TestAdjustLinearSaturates(t *testing.T) {
	out := AdjustLinear(twoToneGray(100, 240), 1.2, 10)
	assert.Equal(t, uint8(130), out.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), out.NRGBAAt(5, 0).R)
	assert.Equal(t, uint8(255), out.NRGBAAt(5, 0).A)
}

func TestAdjustLinearIdentityCopies(t *testing.T) {
	src := twoToneGray(100, 240)
	out := AdjustLinear(src, 1, 0)
	assert.Equal(t, uint8(100), out.NRGBAAt(0, 0).R)
}

func TestPreprocessOutputIsBinary(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 64; i++ {
		v := uint8(i * 4)
		src.Set(i%8, i/8, color.RGBA{R: v, G: v, B: v, A: 255})
	}
	g := Preprocess(src, 1.2, 10)
	assert.Equal(t, 8, g.Bounds().Dx())
	for i := 0; i < len(g.Pix); i += 4 {
		p := g.Pix[i]
		assert.True(t, p == 0 || p == 255)
		assert.Equal(t, p, g.Pix[i+1])
	}
}

func TestPreprocessFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page-1.png")
	require.NoError(t, imaging.Save(twoToneGray(40, 220), in))

	out := filepath.Join(dir, "bin-0001.png")
	require.NoError(t, PreprocessFile(in, out, 1.2, 10))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r)
	r, _, _, _ = img.At(9, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestPreprocessFileMissingInput(t *testing.T) {
	err := PreprocessFile(filepath.Join(t.TempDir(), "none.png"), filepath.Join(t.TempDir(), "out.png"), 1.2, 10)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := "Tabela\r\n-----\nApto\t\t101   R$ 492.030,00  \n\n\n\nfim\f"
	assert.Equal(t, "Tabela\n\nApto 101 R$ 492.030,00\n\nfim", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
