package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
)

func activeState() entity.MonitorState {
	st := entity.NewMonitorState()
	StartManual(&st)
	return st
}

func tickWith(score float64) TickInput {
	in := TickInput{Inferred: true, MaxFrameScore: score, ConsecutiveFailures: 3}
	if score > 0 {
		in.Best = &TriggerCandidate{Camera: entity.PrimaryCamera, Category: "spaghetti", Confidence: score}
	}
	return in
}

func TestEvaluateTick_EscalatesAfterConsecutiveTriggers(t *testing.T) {
	st := activeState()

	require.False(t, EvaluateTick(&st, tickWith(0.8)))
	require.Equal(t, 1, st.FailureCount)
	require.False(t, EvaluateTick(&st, tickWith(0.75)))
	require.Equal(t, 2, st.FailureCount)
	require.True(t, EvaluateTick(&st, tickWith(0.9)))

	require.Equal(t, 3, st.FailureCount)
	require.True(t, st.ActionTriggered)
	require.Equal(t, entity.StatusFailureDetected, st.Status)
	require.NotNil(t, st.FailureCam)
	require.Equal(t, entity.PrimaryCamera, *st.FailureCam)
	require.Equal(t, &entity.FailureReason{Category: "spaghetti", Confidence: 0.9}, st.FailureReason)
}

func TestEvaluateTick_CleanFrameDecaysByOne(t *testing.T) {
	st := activeState()
	scores := []float64{0.8, 0, 0.8, 0.8}
	for _, s := range scores {
		require.False(t, EvaluateTick(&st, tickWith(s)))
	}
	require.Equal(t, 2, st.FailureCount)
	require.True(t, EvaluateTick(&st, tickWith(0.8)), "fifth tick reaches the limit")
}

func TestEvaluateTick_DecayStopsAtZero(t *testing.T) {
	st := activeState()
	for i := 0; i < 5; i++ {
		EvaluateTick(&st, tickWith(0))
	}
	require.Equal(t, 0, st.FailureCount)
	require.Equal(t, entity.StatusMonitoring, st.Status)
}

func TestEvaluateTick_LatchFiresOnce(t *testing.T) {
	st := activeState()
	in := tickWith(0.95)
	in.ConsecutiveFailures = 1

	require.True(t, EvaluateTick(&st, in))
	for i := 0; i < 10; i++ {
		require.False(t, EvaluateTick(&st, in))
		require.False(t, EvaluateTick(&st, tickWith(0)))
	}
	require.Equal(t, 1, st.FailureCount)
	require.Equal(t, entity.StatusFailureDetected, st.Status)
}

func TestEvaluateTick_CachedTickDoesNotMoveCounter(t *testing.T) {
	st := activeState()
	EvaluateTick(&st, tickWith(0.8))

	cached := tickWith(0.8)
	cached.Inferred = false
	for i := 0; i < 5; i++ {
		require.False(t, EvaluateTick(&st, cached))
	}
	require.Equal(t, 1, st.FailureCount)
}

func TestEvaluateTick_InactiveResets(t *testing.T) {
	st := activeState()
	st.FailureCount = 2
	st.ActionTriggered = true
	st.MonitoringActive = false

	require.False(t, EvaluateTick(&st, tickWith(0.99)))
	require.Equal(t, 0, st.FailureCount)
	require.False(t, st.ActionTriggered)
	require.Equal(t, entity.StatusIdle, st.Status)
}

func TestEvaluateTick_LimitChangeClampsCounter(t *testing.T) {
	st := activeState()
	in := tickWith(0.8)
	in.ConsecutiveFailures = 5
	for i := 0; i < 4; i++ {
		EvaluateTick(&st, in)
	}
	require.Equal(t, 4, st.FailureCount)

	in.ConsecutiveFailures = 2
	require.True(t, EvaluateTick(&st, in))
	require.Equal(t, 2, st.FailureCount)
}

func TestBestTrigger(t *testing.T) {
	require.Nil(t, BestTrigger(nil))
	require.Nil(t, BestTrigger([]TriggerCandidate{{Camera: 0, Category: "blob", Confidence: 0}}))

	best := BestTrigger([]TriggerCandidate{
		{Camera: entity.SecondaryCamera, Category: "blob", Confidence: 0.8},
		{Camera: entity.PrimaryCamera, Category: "spaghetti", Confidence: 0.8},
	})
	require.NotNil(t, best)
	require.Equal(t, entity.PrimaryCamera, best.Camera, "ties go to the lower camera")
	require.Equal(t, "spaghetti", best.Category)

	best = BestTrigger([]TriggerCandidate{
		{Camera: entity.PrimaryCamera, Category: "spaghetti", Confidence: 0.75},
		{Camera: entity.SecondaryCamera, Category: "warping", Confidence: 0.9},
	})
	require.Equal(t, entity.SecondaryCamera, best.Camera)
	require.Equal(t, 0.9, best.Confidence)
}
