package app

import (
	"context"
	"image"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
	"print-guard/internal/metrics"
)

func TestDetectorAdapter_NilDetector(t *testing.T) {
	a := NewDetectorAdapter(nil, metrics.New())
	require.False(t, a.Ready())
	require.Empty(t, a.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)), 0.3))
}

func TestDetectorAdapter_NotReadySkipsInference(t *testing.T) {
	det := &fakeDetector{ready: false, script: [][]entity.RawDetection{spaghetti(0.9)}}
	a := NewDetectorAdapter(det, metrics.New())

	require.Empty(t, a.Infer(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)), 0.3))
	require.Zero(t, det.callCount())
}

func TestDetectorAdapter_ErrorsBecomeEmptyResult(t *testing.T) {
	m := metrics.New()
	det := &fakeDetector{ready: true, err: errFake}
	a := NewDetectorAdapter(det, m)
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))

	require.Empty(t, a.Infer(context.Background(), frame, 0.3))
	require.Empty(t, a.Infer(context.Background(), frame, 0.3))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Inferences))
	require.Equal(t, errFake.Error(), a.lastErr)

	det.err = nil
	det.script = [][]entity.RawDetection{nil, nil, spaghetti(0.8)}
	got := a.Infer(context.Background(), frame, 0.25)
	require.Len(t, got, 1)
	require.Empty(t, a.lastErr)
	require.Equal(t, 0.25, det.minConf[len(det.minConf)-1])
}
