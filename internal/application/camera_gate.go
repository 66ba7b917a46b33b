package app

import (
	"context"
	"fmt"
	"time"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
	"print-guard/internal/logger"
)

// GateConfig таймауты получения кадров
type GateConfig struct {
	FetchTimeout time.Duration // обычный запрос кадра
	ProbeTimeout time.Duration // запрос при ожидании готовности
	ReadyBudget  time.Duration // сколько ждать готовности камеры
	RetryPause   time.Duration // пауза между попытками
}

// DefaultGateConfig значения по умолчанию.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		FetchTimeout: 1500 * time.Millisecond,
		ProbeTimeout: 1200 * time.Millisecond,
		ReadyBudget:  8 * time.Second,
		RetryPause:   600 * time.Millisecond,
	}
}

// cameraGate ждёт первой готовности камеры; после неё ошибки не возвращают камеру в ожидание.
// Используется только из цикла мониторинга.
type cameraGate struct {
	source port.FrameSource
	cfg    GateConfig
	ready  map[entity.CameraID]bool
}

func newCameraGate(source port.FrameSource, cfg GateConfig) *cameraGate {
	return &cameraGate{
		source: source,
		cfg:    cfg,
		ready:  make(map[entity.CameraID]bool),
	}
}

// Ready сообщает, видели ли мы камеру готовой хотя бы раз.
func (g *cameraGate) Ready(cam entity.CameraID) bool {
	return g.ready[cam]
}

// Acquire возвращает снимок камеры.
func (g *cameraGate) Acquire(ctx context.Context, cam entity.CameraID, url string) ([]byte, error) {
	if !g.ready[cam] {
		return g.waitReady(ctx, cam, url)
	}

	fctx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()
	return g.source.Fetch(fctx, cam, url)
}

func (g *cameraGate) waitReady(ctx context.Context, cam entity.CameraID, url string) ([]byte, error) {
	deadline := time.Now().Add(g.cfg.ReadyBudget)

	for time.Now().Before(deadline) {
		pctx, cancel := context.WithTimeout(ctx, g.cfg.ProbeTimeout)
		data, err := g.source.Fetch(pctx, cam, url)
		cancel()
		if err == nil {
			g.ready[cam] = true
			logger.Info(moduleCamera, "%s is ready.", cam.Name())
			return data, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.cfg.RetryPause):
		}
	}

	logger.Warn(moduleCamera, "%s did NOT become ready before timeout.", cam.Name())
	return nil, fmt.Errorf("%s: %w", cam.Name(), entity.ErrCameraNotReady)
}
