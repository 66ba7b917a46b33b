package entity

// CategoryCounters счётчики одной категории
type CategoryCounters struct {
	Detections uint64 `json:"detections"`
	Failures   uint64 `json:"failures"`
}

// CameraStats накопленная статистика камеры. Счётчики только растут до явного сброса.
type CameraStats struct {
	Detections  uint64                      `json:"detections"`
	Failures    uint64                      `json:"failures"`
	PerCategory map[string]CategoryCounters `json:"per_category"`
}

// NewCameraStats создаёт нулевую статистику с записями для всех ключей.
func NewCameraStats(keys []string) *CameraStats {
	s := &CameraStats{PerCategory: make(map[string]CategoryCounters, len(keys))}
	s.Normalize(keys)
	return s
}

// Normalize добавляет нулевые записи для новых ключей и никогда не удаляет существующие.
func (s *CameraStats) Normalize(keys []string) {
	if s.PerCategory == nil {
		s.PerCategory = make(map[string]CategoryCounters, len(keys))
	}
	for _, key := range keys {
		if _, ok := s.PerCategory[key]; !ok {
			s.PerCategory[key] = CategoryCounters{}
		}
	}
}

// Clone возвращает независимую копию.
func (s *CameraStats) Clone() CameraStats {
	out := CameraStats{
		Detections:  s.Detections,
		Failures:    s.Failures,
		PerCategory: make(map[string]CategoryCounters, len(s.PerCategory)),
	}
	for k, v := range s.PerCategory {
		out.PerCategory[k] = v
	}
	return out
}
