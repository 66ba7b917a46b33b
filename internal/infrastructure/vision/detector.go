//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"print-guard/internal/domain/entity"
)

// GoCVDetector YOLO-детектор на OpenCV DNN
type GoCVDetector struct {
	mu        sync.Mutex
	net       gocv.Net
	inputSize int
	ready     bool
}

// NewDetector загружает модель (ONNX или TFLite) по пути modelPath.
func NewDetector(modelPath string) (*GoCVDetector, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: cannot load model %s", entity.ErrDetectorUnavailable, modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	return &GoCVDetector{
		net:       net,
		inputSize: InputSize,
		ready:     true,
	}, nil
}

// Ready сообщает, загружена ли модель.
func (d *GoCVDetector) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Infer запускает модель на кадре и возвращает обнаружения после подавления пересечений.
func (d *GoCVDetector) Infer(ctx context.Context, frame image.Image, minConfidence float64) ([]entity.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	// ImageToMatRGB даёт порядок BGR, модель ждёт RGB 0..1.
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	if !d.ready {
		d.mu.Unlock()
		return nil, entity.ErrDetectorUnavailable
	}
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	sizes := out.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("unexpected output dims %v", sizes)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	output := Output{
		Data: append([]float32(nil), data...),
		Rows: sizes[1],
		Cols: sizes[2],
	}
	candidates, err := DecodeYOLO(output, mat.Cols(), mat.Rows(), d.inputSize, d.inputSize, minConfidence)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		rects[i] = c.Box.Rect()
		scores[i] = float32(c.Confidence)
	}

	keep := gocv.NMSBoxes(rects, scores, float32(minConfidence), NMSThreshold)
	kept := make([]entity.RawDetection, 0, len(keep))
	for _, idx := range keep {
		kept = append(kept, candidates[idx])
	}
	return kept, nil
}

// Close освобождает модель.
func (d *GoCVDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return nil
	}
	d.ready = false
	return d.net.Close()
}
