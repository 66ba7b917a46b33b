package container

import (
	app "print-guard/internal/application"
	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
	"print-guard/internal/infrastructure/camera"
	"print-guard/internal/infrastructure/moonraker"
	"print-guard/internal/infrastructure/notify"
	"print-guard/internal/infrastructure/storage"
	"print-guard/internal/metrics"
)

type Container struct {
	Metrics           *metrics.Metrics
	Printer           *moonraker.Client
	Dispatcher        *app.Dispatcher
	SubscriberService *app.SubscriberService
	MonitorService    *app.MonitorService
}

// New собирает сервисы. detector может быть nil: мониторинг работает без обнаружений.
func New(settings *entity.Settings, settingsRepo port.SettingsRepository, detector port.Detector) *Container {
	m := metrics.New()
	printer := moonraker.NewClient(settings.MoonrakerURL)
	dispatcher := app.NewDispatcher(printer, nil, m, app.DefaultDispatchTimeout)
	subscriberService := app.NewSubscriberService(storage.NewMemorySubscriberRepository())

	monitorService := app.NewMonitorService(app.MonitorDeps{
		Settings:   settings,
		Repository: settingsRepo,
		Frames:     camera.NewHTTPSource(),
		Printer:    printer,
		Detector:   app.NewDetectorAdapter(detector, m),
		Dispatcher: dispatcher,
		Metrics:    m,
	})
	monitorService.OnSettingsChange(func(s *entity.Settings) {
		printer.SetBaseURL(s.MoonrakerURL)
	})

	return &Container{
		Metrics:           m,
		Printer:           printer,
		Dispatcher:        dispatcher,
		SubscriberService: subscriberService,
		MonitorService:    monitorService,
	}
}

// EnableTelegram добавляет рассылку уведомлений о сбоях в Telegram. Вызывается до запуска цикла.
func (c *Container) EnableTelegram(sender notify.Sender, defaultChat int64) {
	c.Dispatcher.AddNotifier(notify.NewTelegramNotifier(sender, c.SubscriberService, defaultChat))
}
