package entity

// Status состояние автомата отказов
type Status string

const (
	StatusIdle            Status = "idle"
	StatusMonitoring      Status = "monitoring"
	StatusFailureDetected Status = "failure_detected"
)

// FailureReason категория и уверенность, подтвердившие сбой
type FailureReason struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// MonitorState живое состояние принятия решения
type MonitorState struct {
	Status           Status
	FailureCount     int  // счётчик гистерезиса, насыщается на ConsecutiveFailures
	ActionTriggered  bool // защёлка: действие уже выполнено в этом эпизоде
	MonitoringActive bool
	ManualOverride   bool
	ShowMaskOverlay  bool
	LastPrintState   PrintState
	PrintSummarySent bool
	FailureCam       *CameraID
	FailureReason    *FailureReason
}

// NewMonitorState возвращает начальное состояние процесса.
func NewMonitorState() MonitorState {
	return MonitorState{Status: StatusIdle}
}

// ClearFailure сбрасывает сведения о последнем сбое.
func (s *MonitorState) ClearFailure() {
	s.FailureCam = nil
	s.FailureReason = nil
}
