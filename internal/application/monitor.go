package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
	"print-guard/internal/logger"
	"print-guard/internal/metrics"
)

const (
	moduleMonitor    = "Monitor"
	moduleSession    = "Session"
	moduleDispatcher = "Dispatcher"
	moduleCamera     = "Camera"
	moduleDetector   = "Detector"
	moduleSettings   = "Settings"
)

const (
	// DefaultPrinterStateTimeout таймаут запроса состояния печати.
	DefaultPrinterStateTimeout = 400 * time.Millisecond

	idleSleep    = time.Second
	latchedSleep = 500 * time.Millisecond
	minSleep     = time.Millisecond

	failureReason = "AI detection"
)

// MonitorDeps зависимости сервиса мониторинга
type MonitorDeps struct {
	Settings   *entity.Settings
	Repository port.SettingsRepository
	Frames     port.FrameSource
	Printer    port.PrinterController
	Detector   *DetectorAdapter
	Dispatcher *Dispatcher
	Metrics    *metrics.Metrics

	Gate                GateConfig
	PrinterStateTimeout time.Duration
	Now                 func() time.Time
}

// cameraView последние результаты камеры для интерфейса
type cameraView struct {
	score float64
	frame image.Image
}

// MonitorService цикл мониторинга и операции управления.
// Всё разделяемое состояние защищено mu; сетевые вызовы выполняются без блокировки.
type MonitorService struct {
	mu       sync.RWMutex
	state    entity.MonitorState
	ledger   *Ledger
	settings *entity.Settings // не изменяется после установки, заменяется целиком
	views    map[entity.CameraID]*cameraView
	ticks    uint64
	session  uint64 // растёт при каждом старте и остановке

	updateMu  sync.Mutex
	listeners []func(*entity.Settings)

	// принадлежат горутине цикла
	gate  *cameraGate
	cache map[entity.CameraID][]entity.RawDetection

	repo         port.SettingsRepository
	printer      port.PrinterController
	detector     *DetectorAdapter
	dispatcher   *Dispatcher
	metrics      *metrics.Metrics
	stateTimeout time.Duration
	now          func() time.Time
}

// NewMonitorService создаёт сервис в состоянии idle с нулевой статистикой.
func NewMonitorService(deps MonitorDeps) *MonitorService {
	settings := deps.Settings
	if settings == nil {
		settings = entity.DefaultSettings()
	}
	if deps.Gate == (GateConfig{}) {
		deps.Gate = DefaultGateConfig()
	}
	if deps.PrinterStateTimeout <= 0 {
		deps.PrinterStateTimeout = DefaultPrinterStateTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Detector == nil {
		deps.Detector = NewDetectorAdapter(nil, deps.Metrics)
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher(deps.Printer, nil, deps.Metrics, 0)
	}

	views := make(map[entity.CameraID]*cameraView, len(entity.CameraIDs))
	for _, cam := range entity.CameraIDs {
		views[cam] = &cameraView{}
	}

	return &MonitorService{
		state:        entity.NewMonitorState(),
		ledger:       NewLedger(settings.StatsKeys()),
		settings:     settings.Clone(),
		views:        views,
		gate:         newCameraGate(deps.Frames, deps.Gate),
		cache:        make(map[entity.CameraID][]entity.RawDetection),
		repo:         deps.Repository,
		printer:      deps.Printer,
		detector:     deps.Detector,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		stateTimeout: deps.PrinterStateTimeout,
		now:          deps.Now,
	}
}

// Run выполняет тики до отмены контекста. Ошибки и паники тика не останавливают цикл.
func (s *MonitorService) Run(ctx context.Context) error {
	logger.Info(moduleMonitor, "Monitor thread started.")
	for {
		wait := s.safeTick(ctx)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info(moduleMonitor, "Monitor thread stopped.")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *MonitorService) safeTick(ctx context.Context) (wait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(moduleMonitor, "Loop error: %v", r)
			wait = s.currentSettings().Interval()
		}
	}()
	return s.Tick(ctx)
}

// cameraResult итог камеры за тик, применяется под блокировкой
type cameraResult struct {
	cam       entity.CameraID
	score     float64
	frame     image.Image
	keepFrame bool // оставить предыдущий кадр

	evaluated bool // мониторинг активен и кадр дошёл до детектора
	inferred  bool // модель действительно запускалась
	eval      Evaluation
}

// Tick выполняет одну итерацию цикла и возвращает паузу до следующей.
func (s *MonitorService) Tick(ctx context.Context) time.Duration {
	started := s.now()

	var (
		settings *entity.Settings
		doInfer  bool
		session  uint64
	)
	s.locked(func() {
		s.ticks++
		settings = s.settings
		doInfer = s.ticks%uint64(settings.InferEvery()) == 0
		session = s.session
	})

	ps := s.printerState(ctx)

	var (
		sendSummary  bool
		summaryStats map[entity.CameraID]entity.CameraStats
		active       bool
	)
	s.locked(func() {
		summaryDue := ObservePrintState(&s.state, ps)
		sendSummary = summaryDue && ClaimSummary(&s.state, settings)
		if sendSummary {
			summaryStats = s.ledger.Snapshot()
		}
		active = s.state.MonitoringActive
	})

	if sendSummary {
		s.dispatcher.SendCategorySummary(ctx, settings, summaryStats)
	}

	results := s.captureCameras(ctx, settings, active, doInfer)

	var (
		latchedBefore bool
		best          *TriggerCandidate
		fired         bool
		stale         bool
	)
	s.locked(func() {
		latchedBefore = s.state.ActionTriggered
		stale = session != s.session
		best, fired = s.apply(settings, results, doInfer, stale)
		active = s.state.MonitoringActive
	})

	if stale {
		// обнаружения прошлой сессии не должны переходить в новую
		clear(s.cache)
	}

	if fired {
		logger.Info(moduleMonitor, "[FAILURE] %s @ %d%% | Cam %d",
			entity.CategoryLabel(best.Category), entity.ConfidencePercent(best.Confidence), int(best.Camera))
		s.dispatcher.FireFailureAction(ctx, settings, failureReason)
	}

	elapsed := s.now().Sub(started)
	s.metrics.ObserveTick(elapsed)

	switch {
	case !active:
		return idleSleep
	case latchedBefore:
		return latchedSleep
	}
	wait := settings.Interval() - elapsed
	if wait < minSleep {
		wait = minSleep
	}
	return wait
}

func (s *MonitorService) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// printerState запрашивает состояние печати; недоступный контроллер означает standby.
func (s *MonitorService) printerState(ctx context.Context) entity.PrintState {
	if s.printer == nil {
		return entity.PrintStateStandby
	}
	sctx, cancel := context.WithTimeout(ctx, s.stateTimeout)
	defer cancel()

	ps, err := s.printer.State(sctx)
	if err != nil {
		logger.Debug(moduleSession, "Printer state unavailable: %v", err)
		return entity.PrintStateStandby
	}
	return ps
}

// captureCameras получает кадры, накладывает маски и запускает детектор. Выполняется без блокировки.
func (s *MonitorService) captureCameras(ctx context.Context, settings *entity.Settings, active, doInfer bool) []cameraResult {
	results := make([]cameraResult, 0, len(entity.CameraIDs))

	for _, cam := range entity.CameraIDs {
		res := cameraResult{cam: cam}
		slot, ok := settings.Camera(cam)
		if !ok || int(cam) >= settings.CameraCount || !slot.Enabled || slot.URL == "" {
			results = append(results, res)
			continue
		}

		wasReady := s.gate.Ready(cam)
		data, err := s.gate.Acquire(ctx, cam, slot.URL)
		if err != nil {
			if wasReady {
				logger.Error(moduleCamera, "%s error: %v", cam.Name(), err)
				s.metrics.FrameErrors.WithLabelValues(metrics.Camera(int(cam))).Inc()
			}
			results = append(results, res)
			continue
		}

		img, err := DecodeFrame(data)
		if err != nil {
			logger.Warn(moduleCamera, "%s provided invalid image data.", cam.Name())
			s.metrics.FrameErrors.WithLabelValues(metrics.Camera(int(cam))).Inc()
			res.keepFrame = true
			results = append(results, res)
			continue
		}

		if !active {
			res.frame = img
			results = append(results, res)
			continue
		}

		if doInfer {
			masked := ApplyMasks(img, settings.Zones(cam))
			s.cache[cam] = s.detector.Infer(ctx, masked, settings.MinDetectThreshold(cam))
			res.inferred = true
		}

		res.evaluated = true
		res.eval = ResolveDetections(settings, cam, s.cache[cam])
		res.score = res.eval.Score
		res.frame = Annotate(img, res.eval.Detections)
		results = append(results, res)
	}
	return results
}

// apply применяет результаты тика к статистике, журналу и автомату отказов. Вызывается под mu.
// Если за время тика сессия сменилась (stale), обновляются только кадры интерфейса.
func (s *MonitorService) apply(settings *entity.Settings, results []cameraResult, doInfer, stale bool) (*TriggerCandidate, bool) {
	var candidates []TriggerCandidate

	for _, r := range results {
		view := s.views[r.cam]
		view.score = r.score
		if !r.keepFrame {
			view.frame = r.frame
		}
		if stale || !r.evaluated {
			continue
		}

		ev := r.eval
		if r.inferred {
			s.record(r.cam, ev)
		}
		if ev.Triggered() {
			candidates = append(candidates, TriggerCandidate{
				Camera:     r.cam,
				Category:   ev.TriggerCategory,
				Confidence: ev.TriggerConfidence,
			})
		}
	}

	if stale {
		return nil, false
	}

	best := BestTrigger(candidates)
	in := TickInput{
		Inferred:            doInfer,
		Best:                best,
		ConsecutiveFailures: settings.ConsecutiveFailures,
	}
	if best != nil {
		in.MaxFrameScore = best.Confidence
	}

	evaluating := s.state.MonitoringActive && !s.state.ActionTriggered
	fired := EvaluateTick(&s.state, in)
	s.metrics.FailureCount.Set(float64(s.state.FailureCount))

	if evaluating && in.Inferred && in.MaxFrameScore > 0 {
		logger.Info(moduleMonitor, "Potential failure: %.2f (retry %d/%d)",
			in.MaxFrameScore, s.state.FailureCount, settings.ConsecutiveFailures)
	}

	if fired && best != nil {
		s.ledger.AppendHistory(s.newEvent(best.Camera, entity.FullFailureCategory, best.Confidence, entity.SeverityFailure))
	}
	return best, fired
}

// record учитывает обнаружения камеры за тик с запуском модели.
func (s *MonitorService) record(cam entity.CameraID, ev Evaluation) {
	s.ledger.RecordDetections(cam, ev.Detections)
	s.ledger.RecordTrigger(cam, ev.TriggeredCategories, ev.TriggeredCount)

	label := metrics.Camera(int(cam))
	for _, d := range ev.Detections {
		s.metrics.Detections.WithLabelValues(label, d.Category).Inc()
		if d.Triggered {
			s.metrics.Triggers.WithLabelValues(label, d.Category).Inc()
		}
	}

	if ev.BestCategory != "" && !s.state.ActionTriggered {
		s.ledger.AppendHistory(s.newEvent(cam, ev.BestCategory, ev.BestConfidence, ev.Severity()))
	}
}

func (s *MonitorService) newEvent(cam entity.CameraID, category string, confidence float64, severity entity.Severity) entity.FailureEvent {
	ts := s.now()
	return entity.FailureEvent{
		ID:         uuid.NewString(),
		Timestamp:  ts,
		Time:       ts.Format("15:04:05"),
		Camera:     cam,
		Category:   category,
		Confidence: entity.ConfidencePercent(confidence),
		Severity:   severity,
	}
}

// Start включает мониторинг вручную и начинает новую статистику.
func (s *MonitorService) Start() {
	s.mu.Lock()
	StartManual(&s.state)
	s.resetSession()
	s.mu.Unlock()

	logger.Info(moduleSession, "Monitoring STARTED (manual)")
}

// StartFromMacro включает мониторинг из стартового макроса печати.
func (s *MonitorService) StartFromMacro() {
	s.mu.Lock()
	StartFromMacro(&s.state)
	s.resetSession()
	s.mu.Unlock()

	logger.Info(moduleSession, "Monitoring STARTED (print start macro)")
}

func (s *MonitorService) resetSession() {
	s.session++
	s.ledger.ClearHistory()
	s.ledger.Normalize(s.settings.StatsKeys())
	s.ledger.ResetAll()
	s.metrics.FailureCount.Set(0)
}

// Stop выключает мониторинг и отправляет сводку, если она ещё не отправлялась.
func (s *MonitorService) Stop(ctx context.Context) {
	s.mu.Lock()
	StopMonitoring(&s.state)
	s.session++
	settings := s.settings
	sendSummary := ClaimSummary(&s.state, settings)
	var stats map[entity.CameraID]entity.CameraStats
	if sendSummary {
		stats = s.ledger.Snapshot()
	}
	s.metrics.FailureCount.Set(0)
	s.mu.Unlock()

	logger.Info(moduleSession, "Monitoring STOPPED")
	if sendSummary {
		s.dispatcher.SendCategorySummary(ctx, settings, stats)
	}
}

// SetMaskOverlay включает подсветку зон масок на кадрах интерфейса.
func (s *MonitorService) SetMaskOverlay(show bool) {
	s.mu.Lock()
	s.state.ShowMaskOverlay = show
	s.mu.Unlock()
}

// ResetStats обнуляет статистику камеры.
func (s *MonitorService) ResetStats(cam entity.CameraID) error {
	s.mu.Lock()
	err := s.ledger.Reset(cam)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	logger.Info(moduleMonitor, "Stats reset for %s", cam.Name())
	return nil
}

// History возвращает журнал сбоев.
func (s *MonitorService) History() []entity.FailureEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.History()
}

// ClearHistory очищает журнал сбоев.
func (s *MonitorService) ClearHistory() {
	s.mu.Lock()
	s.ledger.ClearHistory()
	s.mu.Unlock()

	logger.Info(moduleMonitor, "Failure history cleared")
}

// StatusSnapshot согласованный снимок состояния для интерфейса
type StatusSnapshot struct {
	Status           entity.Status                           `json:"status"`
	Score            float64                                 `json:"score"`
	Failures         int                                     `json:"failures"`
	MaxRetries       int                                     `json:"max_retries"`
	CamStats         map[entity.CameraID]entity.CameraStats `json:"cam_stats"`
	CamScores        map[entity.CameraID]float64            `json:"cam_scores"`
	FailureCam       *entity.CameraID                        `json:"failure_cam"`
	FailureReason    *entity.FailureReason                   `json:"failure_reason"`
	MonitoringActive bool                                    `json:"monitoring_active"`
	ManualOverride   bool                                    `json:"manual_override"`
	ShowMaskOverlay  bool                                    `json:"show_mask_overlay"`
	PrintState       entity.PrintState                       `json:"print_state"`
	AIReady          bool                                    `json:"ai_ready"`
}

// Status возвращает снимок состояния.
func (s *MonitorService) Status() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatusSnapshot{
		Status:           s.state.Status,
		Failures:         s.state.FailureCount,
		MaxRetries:       s.settings.ConsecutiveFailures,
		CamStats:         s.ledger.Snapshot(),
		CamScores:        make(map[entity.CameraID]float64, len(s.views)),
		MonitoringActive: s.state.MonitoringActive,
		ManualOverride:   s.state.ManualOverride,
		ShowMaskOverlay:  s.state.ShowMaskOverlay,
		PrintState:       s.state.LastPrintState,
		AIReady:          s.detector.Ready(),
	}
	for cam, v := range s.views {
		snap.CamScores[cam] = v.score
		if v.score > snap.Score {
			snap.Score = v.score
		}
	}
	if s.state.FailureCam != nil {
		cam := *s.state.FailureCam
		snap.FailureCam = &cam
	}
	if s.state.FailureReason != nil {
		reason := *s.state.FailureReason
		snap.FailureReason = &reason
	}
	return snap
}

// DetectorReady сообщает, загружена ли модель.
func (s *MonitorService) DetectorReady() bool {
	return s.detector.Ready()
}

// Settings возвращает копию текущих настроек.
func (s *MonitorService) Settings() *entity.Settings {
	return s.currentSettings().Clone()
}

func (s *MonitorService) currentSettings() *entity.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// OnSettingsChange подписывает fn на успешные изменения настроек.
func (s *MonitorService) OnSettingsChange(fn func(*entity.Settings)) {
	s.updateMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.updateMu.Unlock()
}

// UpdateSettings заменяет ключи верхнего уровня значениями из patch, проверяет и сохраняет настройки.
// Новые настройки начинают действовать, только если сохранение удалось.
func (s *MonitorService) UpdateSettings(ctx context.Context, patch []byte) (*entity.Settings, error) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	current := s.currentSettings()
	merged, err := entity.MergeSettings(current, patch)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	for _, w := range merged.Warnings() {
		logger.Warn(moduleSettings, "%s", w)
	}

	for _, cam := range entity.CameraIDs {
		if len(current.Zones(cam)) > 0 && len(merged.Zones(cam)) == 0 {
			logger.Info(moduleSettings, "Masks cleared on %s", cam.Name())
		}
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, merged); err != nil {
			return nil, fmt.Errorf("save settings: %w", err)
		}
	}

	s.mu.Lock()
	s.settings = merged
	s.ledger.Normalize(merged.StatsKeys())
	s.mu.Unlock()

	for _, fn := range s.listeners {
		fn(merged.Clone())
	}
	return merged.Clone(), nil
}

// Frame возвращает JPEG последнего кадра камеры с рамками обнаружений.
// При включённой подсветке зоны масок подкрашиваются цветом maskColor или цветом темы.
func (s *MonitorService) Frame(cam entity.CameraID, maskColor string) ([]byte, error) {
	s.mu.RLock()
	var frame image.Image
	if v, ok := s.views[cam]; ok {
		frame = v.frame
	}
	show := s.state.ShowMaskOverlay
	settings := s.settings
	s.mu.RUnlock()

	if frame == nil {
		return EncodeJPEG(Placeholder())
	}

	if show {
		if zones := settings.Zones(cam); len(zones) > 0 {
			c := entity.MaskColor(settings.UITheme, settings.CustomTheme)
			if maskColor != "" {
				c, _ = entity.ParseHexColor(maskColor)
			}
			frame = RenderMaskOverlay(frame, zones, c)
		}
	}
	return EncodeJPEG(frame)
}
