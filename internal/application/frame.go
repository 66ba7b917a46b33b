package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"

	"print-guard/internal/domain/entity"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 360
	placeholderText   = "NO SIGNAL / DISABLED"
)

var (
	triggerBoxColor = color.RGBA{R: 255, A: 255}
	triggerText     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	detectBoxColor  = color.RGBA{R: 255, G: 255, A: 255}
	detectText      = color.RGBA{A: 255}
)

// DecodeFrame декодирует снимок камеры (JPEG или PNG).
func DecodeFrame(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decode frame: empty image")
	}
	return img, nil
}

// EncodeJPEG кодирует кадр для отдачи в интерфейс.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Annotate рисует рамки и подписи обнаружений поверх копии кадра.
func Annotate(frame image.Image, detections []entity.Detection) image.Image {
	if len(detections) == 0 {
		return frame
	}

	dc := gg.NewContextForImage(frame)
	dc.SetLineWidth(2)
	for _, d := range detections {
		boxColor, textColor := detectBoxColor, detectText
		if d.Triggered {
			boxColor, textColor = triggerBoxColor, triggerText
		}

		x, y := float64(d.Box.X), float64(d.Box.Y)
		dc.SetColor(boxColor)
		dc.DrawRectangle(x, y, float64(d.Box.W), float64(d.Box.H))
		dc.Stroke()

		label := fmt.Sprintf("%s %d%%", d.Label, entity.ConfidencePercent(d.Confidence))
		tw, th := dc.MeasureString(label)
		ty := y + th + 5
		if d.Box.Y > 20 {
			ty = y - 5
		}
		dc.DrawRectangle(x, ty-th-2, tw, th+4)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawString(label, x, ty)
	}
	return dc.Image()
}

// Placeholder кадр для камеры без сигнала.
func Placeholder() image.Image {
	dc := gg.NewContext(placeholderWidth, placeholderHeight)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB255(100, 100, 100)
	dc.DrawStringAnchored(placeholderText, placeholderWidth/2, placeholderHeight/2, 0.5, 0.5)
	return dc.Image()
}
