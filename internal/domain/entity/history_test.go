package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailureHistory_EvictsOldest(t *testing.T) {
	h := NewFailureHistory(MaxFailureHistory)
	for i := 0; i < MaxFailureHistory; i++ {
		h.Append(FailureEvent{ID: fmt.Sprint(i)})
	}
	require.Equal(t, MaxFailureHistory, h.Len())

	h.Append(FailureEvent{ID: "31st"})
	events := h.Events()
	require.Len(t, events, MaxFailureHistory)
	require.Equal(t, "1", events[0].ID)
	require.Equal(t, "31st", events[len(events)-1].ID)

	for i := 0; i < 100; i++ {
		h.Append(FailureEvent{})
		require.LessOrEqual(t, h.Len(), MaxFailureHistory)
	}

	h.Clear()
	require.Zero(t, h.Len())
}

func TestConfidencePercent(t *testing.T) {
	require.Equal(t, 87, ConfidencePercent(0.876))
	require.Equal(t, 100, ConfidencePercent(1.2))
	require.Equal(t, 0, ConfidencePercent(-0.1))
}
