//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"print-guard/internal/domain/entity"
)

// GoCVDetector заглушка для сборки без OpenCV
type GoCVDetector struct {
	modelPath string
}

// NewDetector создаёт детектор-заглушку (без OpenCV). Модель не загружается.
func NewDetector(modelPath string) (*GoCVDetector, error) {
	return &GoCVDetector{modelPath: modelPath}, nil
}

// Ready всегда false без тега gocv.
func (d *GoCVDetector) Ready() bool {
	return false
}

// Infer возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Infer(ctx context.Context, frame image.Image, minConfidence float64) ([]entity.RawDetection, error) {
	_ = ctx
	_ = frame
	_ = minConfidence
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrDetectorUnavailable)
}

// Close ничего не делает.
func (d *GoCVDetector) Close() error {
	return nil
}
