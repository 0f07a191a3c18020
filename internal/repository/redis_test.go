package repository

import (
	"context"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRepo(t *testing.T) (*RedisStateRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStateRepository(client, time.Hour), mr
}

func TestRedisStateRepository_SetGetClear(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	state, err := repo.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, state)

	err = repo.SetState(ctx, &models.UserState{
		UserID:      42,
		CurrentStep: "choose_time",
		TempData:    map[string]interface{}{"date": "15.06.2025", "price": float64(25000)},
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("user_state:42"))

	state, err = repo.GetState(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "choose_time", state.CurrentStep)
	assert.Equal(t, "15.06.2025", state.GetString("date"))
	assert.Equal(t, int64(25000), state.GetInt64("price"))

	require.NoError(t, repo.ClearState(ctx, 42))
	assert.False(t, mr.Exists("user_state:42"))
}

func TestRedisStateRepository_TTL(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: "main_menu"}))

	mr.FastForward(2 * time.Hour)

	state, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRedisStateRepository_RateLimit(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 7, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 7, 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// окно истекло, счетчик обнуляется
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, 7, 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisStateRepository_NilClient(t *testing.T) {
	repo := NewRedisStateRepository(nil, time.Hour)
	ctx := context.Background()

	_, err := repo.GetState(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, repo.SetState(ctx, &models.UserState{UserID: 1}))
	assert.Error(t, repo.ClearState(ctx, 1))
	_, err = repo.CheckRateLimit(ctx, 1, 5, time.Minute)
	assert.Error(t, err)
}
