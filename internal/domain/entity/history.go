package entity

import "time"

// Severity уровень события истории
type Severity string

const (
	SeverityDetect  Severity = "detect"
	SeverityTrigger Severity = "trigger"
	SeverityFailure Severity = "failure"
)

const (
	// FullFailureCategory категория события, которым фиксируется подтверждённый сбой.
	FullFailureCategory = "FULL FAILURE TRIGGERED"

	MaxFailureHistory = 30
)

// FailureEvent неизменяемая запись журнала сбоев
type FailureEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Time       string    `json:"time"` // HH:MM:SS для интерфейса
	Camera     CameraID  `json:"camera"`
	Category   string    `json:"category"`
	Confidence int       `json:"confidence"` // проценты 0..100
	Severity   Severity  `json:"severity"`
}

// ConfidencePercent переводит уверенность 0..1 в целые проценты с обрезкой.
func ConfidencePercent(confidence float64) int {
	p := int(confidence * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// FailureHistory ограниченная очередь событий: при переполнении вытесняется самое старое.
type FailureHistory struct {
	events   []FailureEvent
	capacity int
}

// NewFailureHistory создаёт историю заданной ёмкости.
func NewFailureHistory(capacity int) *FailureHistory {
	if capacity <= 0 {
		capacity = MaxFailureHistory
	}
	return &FailureHistory{
		events:   make([]FailureEvent, 0, capacity),
		capacity: capacity,
	}
}

// Append добавляет событие в конец.
func (h *FailureHistory) Append(ev FailureEvent) {
	if len(h.events) >= h.capacity {
		copy(h.events, h.events[1:])
		h.events = h.events[:len(h.events)-1]
	}
	h.events = append(h.events, ev)
}

// Events возвращает копию событий в хронологическом порядке.
func (h *FailureHistory) Events() []FailureEvent {
	out := make([]FailureEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Len число событий в истории.
func (h *FailureHistory) Len() int { return len(h.events) }

// Clear очищает историю.
func (h *FailureHistory) Clear() {
	h.events = h.events[:0]
}
