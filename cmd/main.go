package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"print-guard/config"
	"print-guard/internal/api/rest"
	"print-guard/internal/api/telegram"
	"print-guard/internal/container"
	"print-guard/internal/domain/port"
	"print-guard/internal/infrastructure/storage"
	"print-guard/internal/infrastructure/vision"
	"print-guard/internal/logger"
)

const moduleMain = "Main"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Журнал для панели логов интерфейса
	logs := logger.NewBuffer(logger.DefaultBufferLines)
	logger.Init(cfg.LogLevel, os.Stderr, cfg.LogColor, logs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Повреждённый файл настроек останавливает запуск
	repo := storage.NewFileSettingsRepository(cfg.SettingsFile)
	settings, err := repo.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings in %s: %v", cfg.SettingsFile, err)
	}
	for _, w := range settings.Warnings() {
		logger.Warn(moduleMain, "%s", w)
	}

	var detector port.Detector
	d, err := vision.NewDetector(cfg.ModelPath)
	if err != nil {
		logger.Error(moduleMain, "Failed to load model: %v", err)
	} else {
		defer d.Close()
		detector = d
		if d.Ready() {
			logger.Info(moduleMain, "Loaded model %s", cfg.ModelPath)
		} else {
			logger.Warn(moduleMain, "Model is not available, detection is disabled")
		}
	}

	// Собираем сервисы приложения
	c := container.New(settings, repo, detector)

	var wg sync.WaitGroup

	if cfg.TelegramToken != "" {
		api, err := telegram.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Error(moduleMain, "Failed to create bot: %v", err)
		} else {
			c.EnableTelegram(api, cfg.TelegramChatID)
			bot := telegram.NewBot(api, c.MonitorService, c.SubscriberService)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error(moduleMain, "Bot error: %v", err)
				}
			}()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.MonitorService.Run(ctx)
	}()

	server := rest.NewServer(c.MonitorService, logs, c.Metrics.Handler())
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(moduleMain, "Web server running at %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(moduleMain, "HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(moduleMain, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(moduleMain, "HTTP shutdown: %v", err)
	}

	wg.Wait()
}
