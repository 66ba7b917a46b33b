package app

import (
	"fmt"

	"print-guard/internal/domain/entity"
)

// Ledger статистика камер и журнал сбоев. Не потокобезопасен: владелец MonitorService.
type Ledger struct {
	stats   map[entity.CameraID]*entity.CameraStats
	history *entity.FailureHistory
	keys    []string
}

// NewLedger создаёт пустой журнал со статистикой для всех камер.
func NewLedger(keys []string) *Ledger {
	l := &Ledger{
		stats:   make(map[entity.CameraID]*entity.CameraStats, len(entity.CameraIDs)),
		history: entity.NewFailureHistory(entity.MaxFailureHistory),
		keys:    append([]string(nil), keys...),
	}
	l.ResetAll()
	return l
}

// RecordDetections учитывает обнаружения камеры за тик с реальным запуском модели.
func (l *Ledger) RecordDetections(cam entity.CameraID, detections []entity.Detection) {
	s, ok := l.stats[cam]
	if !ok {
		return
	}
	s.Detections += uint64(len(detections))
	for _, d := range detections {
		c := s.PerCategory[d.Category]
		c.Detections++
		s.PerCategory[d.Category] = c
	}
}

// RecordTrigger учитывает срабатывания: общий счётчик по числу экземпляров,
// счётчики категорий по одному на категорию за тик.
func (l *Ledger) RecordTrigger(cam entity.CameraID, categories []string, instances int) {
	s, ok := l.stats[cam]
	if !ok || instances <= 0 {
		return
	}
	s.Failures += uint64(instances)
	for _, key := range categories {
		c := s.PerCategory[key]
		c.Failures++
		s.PerCategory[key] = c
	}
}

// AppendHistory добавляет событие в журнал.
func (l *Ledger) AppendHistory(ev entity.FailureEvent) {
	l.history.Append(ev)
}

// Normalize дополняет статистику новыми ключами категорий.
func (l *Ledger) Normalize(keys []string) {
	l.keys = append([]string(nil), keys...)
	for _, s := range l.stats {
		s.Normalize(keys)
	}
}

// Reset обнуляет статистику камеры.
func (l *Ledger) Reset(cam entity.CameraID) error {
	if !cam.Valid() {
		return fmt.Errorf("%w: %d", entity.ErrInvalidCamera, cam)
	}
	l.stats[cam] = entity.NewCameraStats(l.keys)
	return nil
}

// ResetAll обнуляет статистику всех камер. Журнал не трогает.
func (l *Ledger) ResetAll() {
	for _, cam := range entity.CameraIDs {
		l.stats[cam] = entity.NewCameraStats(l.keys)
	}
}

// Stats возвращает копию статистики камеры.
func (l *Ledger) Stats(cam entity.CameraID) entity.CameraStats {
	s, ok := l.stats[cam]
	if !ok {
		return *entity.NewCameraStats(l.keys)
	}
	return s.Clone()
}

// Snapshot возвращает копию статистики всех камер.
func (l *Ledger) Snapshot() map[entity.CameraID]entity.CameraStats {
	out := make(map[entity.CameraID]entity.CameraStats, len(l.stats))
	for cam, s := range l.stats {
		out[cam] = s.Clone()
	}
	return out
}

// History возвращает копию журнала.
func (l *Ledger) History() []entity.FailureEvent {
	return l.history.Events()
}

// ClearHistory очищает журнал.
func (l *Ledger) ClearHistory() {
	l.history.Clear()
}
