package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"print-guard/internal/logger"
)

type Config struct {
	HTTPAddr     string
	SettingsFile string
	ModelPath    string
	LogLevel     logger.Level
	LogColor     bool

	TelegramToken  string
	TelegramChatID int64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из функции чтения переменных окружения.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	level, err := logger.ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:      get("HTTP_ADDR", ":7126"),
		SettingsFile:  get("SETTINGS_FILE", "user_settings.json"),
		ModelPath:     get("MODEL_PATH", "model.onnx"),
		LogLevel:      level,
		TelegramToken: getenv("TELEGRAM_TOKEN"),
	}

	if v := getenv("LOG_COLOR"); v != "" {
		color, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_COLOR: %w", err)
		}
		cfg.LogColor = color
	}

	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}
