package app

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestApplyMasks_BlackensZonesOnCopy(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	src := solid(10, 10, white)

	out := ApplyMasks(src, []entity.MaskZone{{X: 0, Y: 0, W: 0.5, H: 0.5}})

	require.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{A: 255}, out.RGBAAt(4, 4))
	require.Equal(t, white, out.RGBAAt(5, 5))
	require.Equal(t, white, out.RGBAAt(9, 0))

	require.Equal(t, white, src.RGBAAt(0, 0), "source frame is untouched")
}

func TestApplyMasks_ClampsAndSkipsMalformed(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	src := solid(10, 10, white)

	out := ApplyMasks(src, []entity.MaskZone{{X: 0.9, Y: 0.9, W: 5, H: 5}})
	require.Equal(t, color.RGBA{A: 255}, out.RGBAAt(9, 9))
	require.Equal(t, white, out.RGBAAt(8, 8))

	none := ApplyMasks(src, nil)
	require.Equal(t, src.Pix, none.Pix)
}

func TestRenderMaskOverlay_TintsWithoutHiding(t *testing.T) {
	src := solid(20, 20, color.RGBA{A: 255})
	out := RenderMaskOverlay(src, []entity.MaskZone{{X: 0, Y: 0, W: 0.5, H: 1}}, color.RGBA{R: 255, A: 255})

	r, _, _, _ := out.At(2, 2).RGBA()
	require.NotZero(t, r)
	r, _, _, _ = out.At(15, 2).RGBA()
	require.Zero(t, r)
}

func TestDecodeAndEncodeFrame(t *testing.T) {
	img, err := DecodeFrame(testPNG(t, 32, 24))
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())

	_, err = DecodeFrame([]byte("definitely not an image"))
	require.Error(t, err)

	data, err := EncodeJPEG(img)
	require.NoError(t, err)
	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	require.Equal(t, 24, decoded.Bounds().Dy())
}

func TestAnnotate(t *testing.T) {
	src := solid(64, 48, color.RGBA{A: 255})
	require.Equal(t, image.Image(src), Annotate(src, nil))

	out := Annotate(src, []entity.Detection{{
		Box:        entity.Box{X: 10, Y: 25, W: 20, H: 15},
		Confidence: 0.9,
		Label:      "Spaghetti",
		Triggered:  true,
	}})
	require.Equal(t, src.Bounds(), out.Bounds())
	require.Equal(t, color.RGBA{A: 255}, src.RGBAAt(10, 25), "annotation draws on a copy")

	r, g, _, _ := out.At(10, 30).RGBA()
	require.NotZero(t, r)
	require.Zero(t, g)
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder()
	require.Equal(t, image.Rect(0, 0, 640, 360), img.Bounds())
}
