package vision

import (
	"fmt"
	"math"

	"print-guard/internal/domain/entity"
)

const (
	// InputSize сторона квадратного входа модели.
	InputSize = 640
	// NMSThreshold порог IoU подавления пересекающихся рамок.
	NMSThreshold = 0.45

	// normalizedCoordLimit координаты не больше этого значения считаются нормированными 0..1.
	normalizedCoordLimit = 1.5
)

// Output выход YOLOv8 формы [1, Rows, Cols]. Одна из осей: 4 координаты плюс оценки классов,
// другая: кандидаты; ориентация определяется по меньшей оси.
type Output struct {
	Data []float32
	Rows int
	Cols int
}

func (o Output) transposed() bool {
	return o.Rows < o.Cols
}

func (o Output) candidates() int {
	if o.transposed() {
		return o.Cols
	}
	return o.Rows
}

func (o Output) features() int {
	if o.transposed() {
		return o.Rows
	}
	return o.Cols
}

func (o Output) at(candidate, feature int) float64 {
	if o.transposed() {
		return float64(o.Data[feature*o.Cols+candidate])
	}
	return float64(o.Data[candidate*o.Cols+feature])
}

// DecodeYOLO переводит выход модели в обнаружения в пикселях кадра imgW×imgH (до подавления пересечений).
// Рамки обрезаются по краям кадра.
func DecodeYOLO(out Output, imgW, imgH, inputW, inputH int, minConfidence float64) ([]entity.RawDetection, error) {
	if out.Rows*out.Cols != len(out.Data) {
		return nil, fmt.Errorf("yolo output shape %dx%d does not match %d values", out.Rows, out.Cols, len(out.Data))
	}
	if out.features() <= 4 {
		return nil, fmt.Errorf("yolo output has no class scores (%d features)", out.features())
	}
	if imgW <= 0 || imgH <= 0 || inputW <= 0 || inputH <= 0 {
		return nil, fmt.Errorf("invalid frame %dx%d or input %dx%d", imgW, imgH, inputW, inputH)
	}

	n := out.candidates()
	maxCoord := 0.0
	for i := 0; i < n; i++ {
		for f := 0; f < 4; f++ {
			maxCoord = math.Max(maxCoord, out.at(i, f))
		}
	}

	xFactor := float64(imgW) / float64(inputW)
	yFactor := float64(imgH) / float64(inputH)
	if maxCoord <= normalizedCoordLimit {
		xFactor, yFactor = float64(imgW), float64(imgH)
	}

	var dets []entity.RawDetection
	for i := 0; i < n; i++ {
		classID, score := -1, 0.0
		for f := 4; f < out.features(); f++ {
			if s := out.at(i, f); classID < 0 || s > score {
				classID, score = f-4, s
			}
		}
		if score < minConfidence {
			continue
		}

		cx, cy, w, h := out.at(i, 0), out.at(i, 1), out.at(i, 2), out.at(i, 3)
		left := int((cx - w/2) * xFactor)
		top := int((cy - h/2) * yFactor)
		width := int(w * xFactor)
		height := int(h * yFactor)

		if left < 0 {
			left = 0
		}
		if top < 0 {
			top = 0
		}
		if width > imgW-left {
			width = imgW - left
		}
		if height > imgH-top {
			height = imgH - top
		}

		dets = append(dets, entity.RawDetection{
			Box:        entity.Box{X: left, Y: top, W: width, H: height},
			Confidence: score,
			ClassID:    classID,
		})
	}
	return dets, nil
}
