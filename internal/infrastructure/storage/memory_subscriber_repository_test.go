package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"print-guard/internal/domain/entity"
)

func TestMemorySubscriberRepository_GetCreates(t *testing.T) {
	repo := NewMemorySubscriberRepository()
	ctx := context.Background()

	sub, err := repo.Get(ctx, 7, 70)
	require.NoError(t, err)
	require.Equal(t, int64(70), sub.ChatID)
	require.Equal(t, entity.SubscriberInactive, sub.State)
}

func TestMemorySubscriberRepository_Active(t *testing.T) {
	repo := NewMemorySubscriberRepository()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		sub, err := repo.Get(ctx, id, id*10)
		require.NoError(t, err)
		if id != 2 {
			sub.SetState(entity.SubscriberActive)
			require.NoError(t, repo.Save(ctx, sub))
		}
	}

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, int64(1), active[0].ID)
	require.Equal(t, int64(3), active[1].ID)
}
