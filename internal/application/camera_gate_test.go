package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
)

func TestCameraGate_WaitsForFirstFrame(t *testing.T) {
	frames := newFakeFrames([]byte("frame"))
	frames.failNext(entity.PrimaryCamera, 2)
	gate := newCameraGate(frames, GateConfig{
		FetchTimeout: testGate.FetchTimeout,
		ProbeTimeout: testGate.ProbeTimeout,
		ReadyBudget:  testGate.ReadyBudget * 10,
		RetryPause:   testGate.RetryPause,
	})

	require.False(t, gate.Ready(entity.PrimaryCamera))
	data, err := gate.Acquire(context.Background(), entity.PrimaryCamera, "http://cam0")
	require.NoError(t, err)
	require.Equal(t, []byte("frame"), data, "probe response is reused as the frame")
	require.Equal(t, 3, frames.callCount(entity.PrimaryCamera))
	require.True(t, gate.Ready(entity.PrimaryCamera))
}

func TestCameraGate_GivesUpAfterBudget(t *testing.T) {
	frames := newFakeFrames([]byte("frame"))
	frames.setDown(entity.SecondaryCamera, true)
	gate := newCameraGate(frames, testGate)

	_, err := gate.Acquire(context.Background(), entity.SecondaryCamera, "http://cam1")
	require.True(t, errors.Is(err, entity.ErrCameraNotReady))
	require.False(t, gate.Ready(entity.SecondaryCamera))
	require.GreaterOrEqual(t, frames.callCount(entity.SecondaryCamera), 2)
}

func TestCameraGate_ReadinessIsSticky(t *testing.T) {
	frames := newFakeFrames([]byte("frame"))
	gate := newCameraGate(frames, testGate)
	ctx := context.Background()

	_, err := gate.Acquire(ctx, entity.PrimaryCamera, "http://cam0")
	require.NoError(t, err)

	frames.failNext(entity.PrimaryCamera, 1)
	before := frames.callCount(entity.PrimaryCamera)
	_, err = gate.Acquire(ctx, entity.PrimaryCamera, "http://cam0")
	require.ErrorIs(t, err, errFake)
	require.Equal(t, before+1, frames.callCount(entity.PrimaryCamera), "no readiness wait after the first success")
	require.True(t, gate.Ready(entity.PrimaryCamera))

	data, err := gate.Acquire(ctx, entity.PrimaryCamera, "http://cam0")
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestCameraGate_HonoursCancellation(t *testing.T) {
	frames := newFakeFrames(nil)
	frames.setDown(entity.PrimaryCamera, true)
	gate := newCameraGate(frames, DefaultGateConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gate.Acquire(ctx, entity.PrimaryCamera, "http://cam0")
	require.ErrorIs(t, err, context.Canceled)
}
