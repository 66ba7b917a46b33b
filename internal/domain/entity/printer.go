package entity

// PrintState состояние задания на стороне контроллера принтера
type PrintState string

const (
	PrintStateStandby   PrintState = "standby"
	PrintStatePrinting  PrintState = "printing"
	PrintStatePaused    PrintState = "paused"
	PrintStateComplete  PrintState = "complete"
	PrintStateCancelled PrintState = "cancelled"
	PrintStateError     PrintState = "error"
)

// Finished сообщает, что задание завершилось (успешно или отменено).
func (s PrintState) Finished() bool {
	return s == PrintStateComplete || s == PrintStateCancelled
}

// FailureAction действие при подтверждённом сбое
type FailureAction string

const (
	ActionNothing FailureAction = "nothing"
	ActionPause   FailureAction = "pause"
	ActionCancel  FailureAction = "cancel"
)

// Valid проверяет, что действие известно.
func (a FailureAction) Valid() bool {
	switch a {
	case ActionNothing, ActionPause, ActionCancel:
		return true
	}
	return false
}

// DisplayName название действия для уведомлений.
func (a FailureAction) DisplayName() string {
	switch a {
	case ActionNothing:
		return "Warning"
	case ActionPause:
		return "Pause Print"
	case ActionCancel:
		return "Cancel Print"
	}
	return string(a)
}
