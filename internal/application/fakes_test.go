package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
)

var errFake = errors.New("fake failure")

// testGate короткие таймауты, чтобы тесты не ждали секундами.
var testGate = GateConfig{
	FetchTimeout: 50 * time.Millisecond,
	ProbeTimeout: 50 * time.Millisecond,
	ReadyBudget:  30 * time.Millisecond,
	RetryPause:   5 * time.Millisecond,
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeFrames struct {
	mu    sync.Mutex
	data  []byte
	fail  map[entity.CameraID]int // сколько следующих запросов завершатся ошибкой
	down  map[entity.CameraID]bool
	calls map[entity.CameraID]int
}

func newFakeFrames(data []byte) *fakeFrames {
	return &fakeFrames{
		data:  data,
		fail:  make(map[entity.CameraID]int),
		down:  make(map[entity.CameraID]bool),
		calls: make(map[entity.CameraID]int),
	}
}

func (f *fakeFrames) Fetch(_ context.Context, cam entity.CameraID, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[cam]++
	if f.down[cam] {
		return nil, errFake
	}
	if f.fail[cam] > 0 {
		f.fail[cam]--
		return nil, errFake
	}
	return f.data, nil
}

func (f *fakeFrames) failNext(cam entity.CameraID, n int) {
	f.mu.Lock()
	f.fail[cam] = n
	f.mu.Unlock()
}

func (f *fakeFrames) setDown(cam entity.CameraID, down bool) {
	f.mu.Lock()
	f.down[cam] = down
	f.mu.Unlock()
}

func (f *fakeFrames) callCount(cam entity.CameraID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cam]
}

// fakeDetector отдаёт результаты по сценарию; после конца сценария пустой список.
type fakeDetector struct {
	mu      sync.Mutex
	ready   bool
	script  [][]entity.RawDetection
	calls   int
	err     error
	panicky bool
	minConf []float64
	last    image.Image
	onInfer func(call int) // вызывается без блокировки перед возвратом результата
}

func (d *fakeDetector) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

func (d *fakeDetector) Infer(_ context.Context, frame image.Image, minConf float64) ([]entity.RawDetection, error) {
	dets, call, hook, err := d.next(frame, minConf)
	if hook != nil {
		hook(call)
	}
	return dets, err
}

func (d *fakeDetector) next(frame image.Image, minConf float64) ([]entity.RawDetection, int, func(int), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicky {
		panic("detector exploded")
	}
	d.minConf = append(d.minConf, minConf)
	d.last = frame
	idx := d.calls
	d.calls++
	if d.err != nil {
		return nil, d.calls, d.onInfer, d.err
	}
	if idx >= len(d.script) {
		return nil, d.calls, d.onInfer, nil
	}
	return d.script[idx], d.calls, d.onInfer, nil
}

func (d *fakeDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *fakeDetector) lastFrame() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func repeat(dets []entity.RawDetection, n int) [][]entity.RawDetection {
	out := make([][]entity.RawDetection, n)
	for i := range out {
		out[i] = dets
	}
	return out
}

func spaghetti(conf float64) []entity.RawDetection {
	return []entity.RawDetection{{Box: entity.Box{X: 4, Y: 4, W: 10, H: 8}, Confidence: conf, ClassID: 0}}
}

type fakePrinter struct {
	mu            sync.Mutex
	state         entity.PrintState
	stateErr      error
	err           error
	console       []string
	notifications []string
	pauses        int
	cancels       int
}

func (p *fakePrinter) State(context.Context) (entity.PrintState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stateErr != nil {
		return "", p.stateErr
	}
	return p.state, nil
}

func (p *fakePrinter) setState(ps entity.PrintState) {
	p.mu.Lock()
	p.state = ps
	p.mu.Unlock()
}

func (p *fakePrinter) ConsoleMessage(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.console = append(p.console, text)
	return p.err
}

func (p *fakePrinter) Notify(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, text)
	return p.err
}

func (p *fakePrinter) Pause(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return p.err
}

func (p *fakePrinter) Cancel(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels++
	return p.err
}

func (p *fakePrinter) consoleLines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.console...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return n.err
}

type fakeSettingsRepo struct {
	mu    sync.Mutex
	saved []*entity.Settings
	err   error
}

func (r *fakeSettingsRepo) Load(context.Context) (*entity.Settings, error) {
	return entity.DefaultSettings(), nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *entity.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, s.Clone())
	return nil
}
