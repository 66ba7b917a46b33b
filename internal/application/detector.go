package app

import (
	"context"
	"image"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
	"print-guard/internal/logger"
	"print-guard/internal/metrics"
)

// DetectorAdapter вызывает детектор и никогда не пропускает ошибку дальше:
// недоступная модель означает «нет обнаружений».
type DetectorAdapter struct {
	detector port.Detector
	metrics  *metrics.Metrics

	// lastErr меняется только из цикла мониторинга.
	lastErr string
}

// NewDetectorAdapter оборачивает детектор. detector может быть nil.
func NewDetectorAdapter(detector port.Detector, m *metrics.Metrics) *DetectorAdapter {
	return &DetectorAdapter{detector: detector, metrics: m}
}

// Ready сообщает, готова ли модель.
func (a *DetectorAdapter) Ready() bool {
	return a.detector != nil && a.detector.Ready()
}

// Infer возвращает сырые обнаружения или пустой список при любой ошибке.
func (a *DetectorAdapter) Infer(ctx context.Context, frame image.Image, minConfidence float64) []entity.RawDetection {
	if !a.Ready() {
		a.report(entity.ErrDetectorUnavailable)
		return nil
	}

	a.metrics.Inferences.Inc()
	dets, err := a.detector.Infer(ctx, frame, minConfidence)
	if err != nil {
		a.report(err)
		return nil
	}
	a.lastErr = ""
	return dets
}

// report логирует ошибку один раз, пока она не сменится.
func (a *DetectorAdapter) report(err error) {
	msg := err.Error()
	if msg == a.lastErr {
		return
	}
	a.lastErr = msg
	logger.Error(moduleDetector, "Inference failed: %v", err)
}
