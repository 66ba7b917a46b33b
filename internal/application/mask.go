package app

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"print-guard/internal/domain/entity"
)

// maskOverlayAlpha непрозрачность заливки зон на кадре для интерфейса.
const maskOverlayAlpha = 0.20

// ApplyMasks возвращает копию кадра, в которой зоны исключения закрашены чёрным.
// Исходный кадр не изменяется.
func ApplyMasks(frame image.Image, zones []entity.MaskZone) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Src)

	for _, z := range zones {
		r, ok := z.Rect(b.Dx(), b.Dy())
		if !ok {
			continue
		}
		draw.Draw(dst, r, image.Black, image.Point{}, draw.Src)
	}
	return dst
}

// RenderMaskOverlay подкрашивает зоны полупрозрачным цветом, не закрывая изображение.
func RenderMaskOverlay(frame image.Image, zones []entity.MaskZone, c color.RGBA) image.Image {
	dc := gg.NewContextForImage(frame)
	w, h := dc.Width(), dc.Height()
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(maskOverlayAlpha*255))

	for _, z := range zones {
		r, ok := z.Rect(w, h)
		if !ok {
			continue
		}
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Fill()
	}
	return dc.Image()
}
