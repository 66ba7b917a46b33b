package app

import "print-guard/internal/domain/entity"

// TriggerCandidate лучшее срабатывание тика
type TriggerCandidate struct {
	Camera     entity.CameraID
	Category   string
	Confidence float64
}

// TickInput агрегат тика для автомата отказов
type TickInput struct {
	// Inferred: в этом тике модель действительно запускалась.
	Inferred bool
	// MaxFrameScore наибольшая уверенность срабатывания по всем камерам, 0 если срабатываний нет.
	MaxFrameScore       float64
	Best                *TriggerCandidate
	ConsecutiveFailures int
}

// EvaluateTick продвигает счётчик гистерезиса и возвращает true, если сбой подтверждён в этом тике.
// После подтверждения состояние заморожено до внешнего сброса защёлки.
func EvaluateTick(st *entity.MonitorState, in TickInput) bool {
	if !st.MonitoringActive {
		st.Status = entity.StatusIdle
		st.FailureCount = 0
		st.ActionTriggered = false
		return false
	}

	if st.ActionTriggered {
		st.Status = entity.StatusFailureDetected
		return false
	}

	st.Status = entity.StatusMonitoring
	if !in.Inferred {
		return false
	}

	limit := in.ConsecutiveFailures
	if limit < 1 {
		limit = 1
	}

	if in.MaxFrameScore <= 0 {
		if st.FailureCount > 0 {
			st.FailureCount--
		}
		return false
	}

	if st.FailureCount < limit {
		st.FailureCount++
	}
	if st.FailureCount > limit {
		st.FailureCount = limit
	}
	if st.FailureCount < limit {
		return false
	}

	st.Status = entity.StatusFailureDetected
	st.ActionTriggered = true
	if in.Best != nil {
		cam := in.Best.Camera
		st.FailureCam = &cam
		st.FailureReason = &entity.FailureReason{
			Category:   in.Best.Category,
			Confidence: in.Best.Confidence,
		}
	}
	return true
}

// BestTrigger выбирает лучшее срабатывание: наибольшая уверенность, при равенстве меньший номер камеры.
func BestTrigger(candidates []TriggerCandidate) *TriggerCandidate {
	var best *TriggerCandidate
	for i := range candidates {
		c := candidates[i]
		if c.Confidence <= 0 {
			continue
		}
		if best == nil || c.Confidence > best.Confidence ||
			(c.Confidence == best.Confidence && c.Camera < best.Camera) {
			best = &c
		}
	}
	return best
}
