package app

import "print-guard/internal/domain/entity"

// Evaluation результат фильтрации обнаружений одной камеры за тик
type Evaluation struct {
	// Detections обнаружения выше порога обнаружения своей категории.
	Detections []entity.Detection
	// Score наибольшая уверенность среди Detections, иначе 0.
	Score float64

	// TriggerConfidence наибольшая уверенность среди сработавших обнаружений.
	TriggerConfidence float64
	TriggerCategory   string
	// TriggeredCategories категории сработавших обнаружений в порядке появления.
	TriggeredCategories []string
	TriggeredCount      int

	// BestCategory категория с наибольшей уверенностью (при равенстве первая).
	BestCategory   string
	BestConfidence float64
}

// Triggered сообщает, было ли хотя бы одно срабатывание.
func (e Evaluation) Triggered() bool {
	return e.TriggeredCount > 0
}

// Severity уровень события истории для этой камеры.
func (e Evaluation) Severity() entity.Severity {
	if e.Triggered() {
		return entity.SeverityTrigger
	}
	return entity.SeverityDetect
}

// ResolveDetections сопоставляет сырые обнаружения категориям и применяет пороги камеры.
func ResolveDetections(settings *entity.Settings, cam entity.CameraID, raws []entity.RawDetection) Evaluation {
	var ev Evaluation
	seen := make(map[string]bool)

	for _, raw := range raws {
		key := entity.CategoryKeyForClass(raw.ClassID)
		cfg, ok := settings.Category(key)
		if !ok {
			continue
		}

		t := cfg.Thresholds(cam)
		if raw.Confidence < t.Detect {
			continue
		}

		det := entity.Detection{
			Box:        raw.Box,
			Confidence: raw.Confidence,
			Category:   key,
			Label:      entity.ClassLabelForClass(raw.ClassID),
		}

		if raw.Confidence > ev.Score {
			ev.Score = raw.Confidence
		}
		if raw.Confidence > ev.BestConfidence {
			ev.BestConfidence = raw.Confidence
			ev.BestCategory = key
		}

		if cfg.Trigger && raw.Confidence >= t.Trigger {
			det.Triggered = true
			ev.TriggeredCount++
			if raw.Confidence > ev.TriggerConfidence {
				ev.TriggerConfidence = raw.Confidence
				ev.TriggerCategory = key
			}
			if !seen[key] {
				seen[key] = true
				ev.TriggeredCategories = append(ev.TriggeredCategories, key)
			}
		}

		ev.Detections = append(ev.Detections, det)
	}

	return ev
}
