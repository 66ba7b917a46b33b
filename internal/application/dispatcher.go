package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
	"print-guard/internal/logger"
	"print-guard/internal/metrics"
)

// DefaultDispatchTimeout ограничение на один вызов контроллера или уведомителя.
const DefaultDispatchTimeout = 3 * time.Second

// Dispatcher отправляет команды и уведомления. Ошибки только логируются: без повторов и без возврата в цикл.
type Dispatcher struct {
	printer   port.PrinterController
	notifiers []port.Notifier
	timeout   time.Duration
	metrics   *metrics.Metrics
}

// NewDispatcher создаёт диспетчер действий.
func NewDispatcher(printer port.PrinterController, notifiers []port.Notifier, m *metrics.Metrics, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{
		printer:   printer,
		notifiers: notifiers,
		timeout:   timeout,
		metrics:   m,
	}
}

// AddNotifier подключает дополнительный канал уведомлений.
func (d *Dispatcher) AddNotifier(n port.Notifier) {
	d.notifiers = append(d.notifiers, n)
}

func (d *Dispatcher) call(ctx context.Context, action string, fn func(context.Context) error) bool {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := fn(cctx); err != nil {
		logger.Warn(moduleDispatcher, "%s failed: %v", action, err)
		d.metrics.DispatchErrors.WithLabelValues(action).Inc()
		return false
	}
	d.metrics.Actions.WithLabelValues(action).Inc()
	return true
}

// SendConsoleMessage выводит сообщение в консоль принтера.
func (d *Dispatcher) SendConsoleMessage(ctx context.Context, text string) {
	if d.printer == nil {
		return
	}
	d.call(ctx, "console", func(ctx context.Context) error {
		return d.printer.ConsoleMessage(ctx, text)
	})
}

// SendNotification отправляет уведомление через контроллер (если включено) и все уведомители.
func (d *Dispatcher) SendNotification(ctx context.Context, settings *entity.Settings, text string) {
	if d.printer != nil && settings.NotifyMobileraker {
		d.call(ctx, "notify", func(ctx context.Context) error {
			return d.printer.Notify(ctx, text)
		})
	}
	for _, n := range d.notifiers {
		d.call(ctx, "notify_external", func(ctx context.Context) error {
			return n.Notify(ctx, text)
		})
	}
}

// Pause ставит печать на паузу.
func (d *Dispatcher) Pause(ctx context.Context) {
	if d.printer == nil {
		return
	}
	d.call(ctx, string(entity.ActionPause), d.printer.Pause)
}

// Cancel отменяет печать.
func (d *Dispatcher) Cancel(ctx context.Context) {
	if d.printer == nil {
		return
	}
	d.call(ctx, string(entity.ActionCancel), d.printer.Cancel)
}

// FireFailureAction выполняет настроенное действие при подтверждённом сбое.
func (d *Dispatcher) FireFailureAction(ctx context.Context, settings *entity.Settings, reason string) {
	action := settings.OnFailure
	logger.Info(moduleDispatcher, "Failure confirmed: %s | Action = %s", reason, action)

	d.SendConsoleMessage(ctx, fmt.Sprintf(">>> %s! Action: %s <<<", strings.ToUpper(reason), strings.ToUpper(string(action))))
	d.SendNotification(ctx, settings, fmt.Sprintf("⚠️ AI Failure Detected – Action: %s", action.DisplayName()))

	switch action {
	case entity.ActionPause:
		d.Pause(ctx)
	case entity.ActionCancel:
		d.Cancel(ctx)
	}
}

// SendCategorySummary отправляет в консоль сводку по категориям за сессию.
func (d *Dispatcher) SendCategorySummary(ctx context.Context, settings *entity.Settings, stats map[entity.CameraID]entity.CameraStats) []string {
	messages := FormatSummary(settings, stats)
	for _, msg := range messages {
		d.SendConsoleMessage(ctx, msg)
		logger.Info(moduleDispatcher, "Print summary: %s", msg)
	}
	return messages
}

// FormatSummary формирует строки сводки. Для одной камеры одна общая строка,
// для нескольких по строке на каждую включённую камеру.
func FormatSummary(settings *entity.Settings, stats map[entity.CameraID]entity.CameraStats) []string {
	var messages []string

	if settings.CameraCount <= 1 {
		cam := entity.PrimaryCamera
		if !settings.CameraEnabled(cam) {
			return messages
		}
		if line := categoryLine(settings, stats[cam]); line != "" {
			messages = append(messages, ">>> AI DETECTION SUMMARY >>> "+line)
		}
		return messages
	}

	for _, cam := range entity.CameraIDs {
		if int(cam) >= settings.CameraCount || !settings.CameraEnabled(cam) {
			continue
		}
		s, ok := stats[cam]
		if !ok {
			continue
		}
		if line := categoryLine(settings, s); line != "" {
			messages = append(messages, fmt.Sprintf(">>> AI DETECTION SUMMARY - %s >>> %s", cam.Label(), line))
		}
	}
	return messages
}

func categoryLine(settings *entity.Settings, stats entity.CameraStats) string {
	var parts []string
	for _, key := range settings.StatsKeys() {
		if _, ok := settings.Category(key); !ok {
			continue
		}
		c := stats.PerCategory[key]
		parts = append(parts, fmt.Sprintf("%s: %d detections, %d failures", entity.CategoryLabel(key), c.Detections, c.Failures))
	}
	return strings.Join(parts, " | ")
}
