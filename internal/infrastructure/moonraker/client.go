package moonraker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

// Client HTTP-клиент Moonraker
type Client struct {
	mu      sync.RWMutex
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиента для baseURL (например http://127.0.0.1:7125)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: normalizeURL(baseURL),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// SetBaseURL меняет адрес Moonraker (после изменения настроек)
func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = normalizeURL(u)
	c.mu.Unlock()
}

// BaseURL текущий адрес
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) endpoint(path string) (string, error) {
	base := c.BaseURL()
	if base == "" {
		return "", entity.ErrControllerNotConfigured
	}
	return base + path, nil
}

type queryResponse struct {
	Result struct {
		Status struct {
			PrintStats struct {
				State string `json:"state"`
			} `json:"print_stats"`
		} `json:"status"`
	} `json:"result"`
}

// State возвращает состояние задания печати из print_stats
func (c *Client) State(ctx context.Context) (entity.PrintState, error) {
	url, err := c.endpoint("/printer/objects/query?print_stats")
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "build state request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "query print_stats")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query print_stats: HTTP %d", resp.StatusCode)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decode print_stats")
	}
	if body.Result.Status.PrintStats.State == "" {
		return "", errors.New("print_stats state is missing")
	}
	return entity.PrintState(body.Result.Status.PrintStats.State), nil
}

// ConsoleMessage выводит сообщение в консоль через M118
func (c *Client) ConsoleMessage(ctx context.Context, text string) error {
	return c.script(ctx, "M118 "+text)
}

// Notify отправляет push-уведомление Mobileraker
func (c *Client) Notify(ctx context.Context, text string) error {
	return c.script(ctx, fmt.Sprintf(`MR_NOTIFY MESSAGE="%s"`, escapeGcodeString(text)))
}

// Pause ставит печать на паузу
func (c *Client) Pause(ctx context.Context) error {
	return c.post(ctx, "/printer/print/pause", nil)
}

// Cancel отменяет печать
func (c *Client) Cancel(ctx context.Context) error {
	return c.post(ctx, "/printer/print/cancel", nil)
}

func (c *Client) script(ctx context.Context, script string) error {
	payload, err := json.Marshal(map[string]string{"script": script})
	if err != nil {
		return err
	}
	return c.post(ctx, "/printer/gcode/script", payload)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) error {
	url, err := c.endpoint(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return errors.Wrapf(err, "build request %s", path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "post %s", path)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: HTTP %d", path, resp.StatusCode)
	}
	return nil
}

// escapeGcodeString экранирует кавычки в строковом параметре макроса.
func escapeGcodeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", " ")
}

var _ port.PrinterController = (*Client)(nil)
