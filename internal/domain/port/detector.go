package port

import (
	"context"
	"image"

	"print-guard/internal/domain/entity"
)

// Detector интерфейс детектора объектов
type Detector interface {
	// Infer запускает модель на кадре и возвращает обнаружения с уверенностью не ниже minConfidence
	Infer(ctx context.Context, frame image.Image, minConfidence float64) ([]entity.RawDetection, error)

	// Ready сообщает, загружена ли модель
	Ready() bool
}
