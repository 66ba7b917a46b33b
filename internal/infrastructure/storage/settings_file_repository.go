package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"print-guard/internal/domain/entity"
	"print-guard/internal/domain/port"
)

// FileSettingsRepository хранит настройки в JSON-файле.
// Ключи файла накладываются на значения по умолчанию; отсутствующий файл означает значения по умолчанию.
type FileSettingsRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileSettingsRepository создаёт хранилище для файла path
func NewFileSettingsRepository(path string) *FileSettingsRepository {
	return &FileSettingsRepository{path: path}
}

// Path путь к файлу настроек
func (r *FileSettingsRepository) Path() string {
	return r.path
}

// Load читает файл. Повреждённый файл возвращает ошибку с entity.ErrInvalidSettings.
func (r *FileSettingsRepository) Load(ctx context.Context) (*entity.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return entity.DefaultSettings(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read settings %s", r.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entity.DefaultSettings(), nil
	}

	settings, err := entity.MergeSettings(entity.DefaultSettings(), data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", r.path)
	}
	return settings, nil
}

// Save атомарно перезаписывает файл через временный файл в том же каталоге.
func (r *FileSettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp settings file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write settings")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close settings")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrapf(err, "replace settings %s", r.path)
	}
	return nil
}

var _ port.SettingsRepository = (*FileSettingsRepository)(nil)
