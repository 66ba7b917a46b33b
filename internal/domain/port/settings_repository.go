package port

import (
	"context"

	"print-guard/internal/domain/entity"
)

// SettingsRepository интерфейс хранилища пользовательских настроек
type SettingsRepository interface {
	// Load возвращает сохранённые настройки поверх значений по умолчанию
	Load(ctx context.Context) (*entity.Settings, error)

	// Save сохраняет настройки
	Save(ctx context.Context, settings *entity.Settings) error
}
