package storage

import (
	"context"
	"sync"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

// MemorySettingsRepository хранит настройки в памяти (для тестов и запуска без файла)
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings *entity.Settings
	saves    int
}

// NewMemorySettingsRepository создаёт хранилище с начальными настройками; nil означает значения по умолчанию
func NewMemorySettingsRepository(initial *entity.Settings) *MemorySettingsRepository {
	if initial == nil {
		initial = entity.DefaultSettings()
	}
	return &MemorySettingsRepository{settings: initial.Clone()}
}

// Load возвращает копию настроек
func (r *MemorySettingsRepository) Load(ctx context.Context) (*entity.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.Clone(), nil
}

// Save сохраняет копию настроек
func (r *MemorySettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	r.mu.Lock()
	r.settings = settings.Clone()
	r.saves++
	r.mu.Unlock()
	return nil
}

// Saves количество сохранений
func (r *MemorySettingsRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

var _ port.SettingsRepository = (*MemorySettingsRepository)(nil)
