package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"print-guard/internal/logger"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)
	require.Equal(t, ":7126", cfg.HTTPAddr)
	require.Equal(t, "user_settings.json", cfg.SettingsFile)
	require.Equal(t, "model.onnx", cfg.ModelPath)
	require.Equal(t, logger.INFO, cfg.LogLevel)
	require.False(t, cfg.LogColor)
	require.Empty(t, cfg.TelegramToken)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"HTTP_ADDR":        "127.0.0.1:8080",
		"LOG_LEVEL":        "debug",
		"LOG_COLOR":        "true",
		"TELEGRAM_TOKEN":   "token",
		"TELEGRAM_CHAT_ID": "-100123",
	}))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	require.Equal(t, logger.DEBUG, cfg.LogLevel)
	require.True(t, cfg.LogColor)
	require.Equal(t, int64(-100123), cfg.TelegramChatID)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"LOG_LEVEL": "loud"}))
	require.Error(t, err)

	_, err = FromEnv(env(map[string]string{"TELEGRAM_CHAT_ID": "chat"}))
	require.Error(t, err)
}
