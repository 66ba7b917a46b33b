package app

import (
	"print-guard/internal/domain/entity"
	"print-guard/internal/logger"
)

// ObservePrintState применяет правила сессии к новому состоянию печати.
// Возвращает true, если печать только что закончилась и пора отправить сводку.
func ObservePrintState(st *entity.MonitorState, ps entity.PrintState) bool {
	prev := st.LastPrintState
	summaryDue := prev == entity.PrintStatePrinting && ps.Finished()
	st.LastPrintState = ps

	if ps != entity.PrintStatePrinting && !st.ManualOverride {
		if st.MonitoringActive {
			logger.Info(moduleSession, "Printer not printing → Monitoring OFF")
		}
		st.MonitoringActive = false
		st.ActionTriggered = false
	}

	// Новая печать: только сбрасываем защёлки, мониторинг включают макрос или API.
	if ps == entity.PrintStatePrinting && prev != entity.PrintStatePrinting {
		st.ActionTriggered = false
		st.PrintSummarySent = false
	}

	return summaryDue
}

// ClaimSummary помечает сводку отправленной и возвращает true, если её нужно отправить сейчас.
func ClaimSummary(st *entity.MonitorState, settings *entity.Settings) bool {
	if st.PrintSummarySent || !settings.SendSummary {
		return false
	}
	st.PrintSummarySent = true
	return true
}

// StartManual включает мониторинг вручную: сессия не зависит от состояния принтера.
func StartManual(st *entity.MonitorState) {
	resetForStart(st)
	st.ManualOverride = true
	st.PrintSummarySent = false
}

// StartFromMacro включает мониторинг из стартового макроса печати.
func StartFromMacro(st *entity.MonitorState) {
	resetForStart(st)
	st.ManualOverride = false
}

// StopMonitoring выключает мониторинг и сбрасывает сведения о сбое.
func StopMonitoring(st *entity.MonitorState) {
	st.MonitoringActive = false
	st.FailureCount = 0
	st.ActionTriggered = false
	st.Status = entity.StatusIdle
	st.ClearFailure()
}

func resetForStart(st *entity.MonitorState) {
	st.MonitoringActive = true
	st.FailureCount = 0
	st.ActionTriggered = false
	st.Status = entity.StatusMonitoring
	st.ClearFailure()
}
