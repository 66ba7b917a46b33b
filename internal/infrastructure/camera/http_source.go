package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

// maxSnapshotSize ограничение размера одного снимка.
const maxSnapshotSize = 16 << 20

// HTTPSource загружает снимки камер по HTTP GET.
// Для каждой камеры держится свой клиент, чтобы соединения переиспользовались независимо.
type HTTPSource struct {
	mu      sync.Mutex
	clients map[entity.CameraID]*http.Client
	maxSize int64
}

// NewHTTPSource создаёт источник снимков
func NewHTTPSource() *HTTPSource {
	return &HTTPSource{
		clients: make(map[entity.CameraID]*http.Client),
		maxSize: maxSnapshotSize,
	}
}

func (s *HTTPSource) client(cam entity.CameraID) *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[cam]
	if !ok {
		c = &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		}
		s.clients[cam] = c
	}
	return c
}

// Fetch загружает снимок. Любой статус кроме 200 считается ошибкой.
func (s *HTTPSource) Fetch(ctx context.Context, cam entity.CameraID, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", cam.Name())
	}

	resp, err := s.client(cam).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch snapshot")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	if int64(len(data)) > s.maxSize {
		return nil, errors.Errorf("snapshot too large: over %d bytes", s.maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("empty snapshot")
	}
	return data, nil
}

var _ port.FrameSource = (*HTTPSource)(nil)
