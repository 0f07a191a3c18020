package repository

import (
	"context"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository_SetGetClear(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	state, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)

	err = repo.SetState(ctx, &models.UserState{
		UserID:      1,
		CurrentStep: "choose_date",
		TempData:    map[string]interface{}{"service": "Soqol olish"},
	})
	require.NoError(t, err)

	state, err = repo.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "choose_date", state.CurrentStep)
	assert.Equal(t, "Soqol olish", state.GetString("service"))

	require.NoError(t, repo.ClearState(ctx, 1))
	state, err = repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryStateRepository_RateLimit(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// другой пользователь считается отдельно
	allowed, err = repo.CheckRateLimit(ctx, 2, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryStateRepository_RateLimitWindowReset(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, 1, 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(ctx, 1, 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, err = repo.CheckRateLimit(ctx, 1, 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}
