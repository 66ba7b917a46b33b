package port

import (
	"context"

	"print-guard/internal/domain/entity"
)

// FrameSource источник снимков с камеры
type FrameSource interface {
	// Fetch загружает один закодированный снимок (JPEG/PNG). Таймаут задаётся через ctx.
	Fetch(ctx context.Context, cam entity.CameraID, url string) ([]byte, error)
}
