package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"barberbot/internal/domain"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStateRepository struct{}

var errRepoDown = errors.New("repository down")

func (brokenStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	return nil, errRepoDown
}

func (brokenStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	return errRepoDown
}

func (brokenStateRepository) ClearState(ctx context.Context, userID int64) error {
	return errRepoDown
}

func (brokenStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return false, errRepoDown
}

var _ domain.StateRepository = brokenStateRepository{}

func TestFailover_FallsBackOnError(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryStateRepository(time.Hour)
	repo := NewFailoverStateRepository(brokenStateRepository{}, fallback, &logger)
	ctx := context.Background()

	err := repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: "choose_date"})
	require.NoError(t, err)

	state, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "choose_date", state.CurrentStep)

	require.NoError(t, repo.ClearState(ctx, 1))

	allowed, err := repo.CheckRateLimit(ctx, 1, 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailover_UsesPrimaryWhenHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryStateRepository(time.Hour)
	fallback := NewMemoryStateRepository(time.Hour)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 5, CurrentStep: "confirmation"}))

	state, err := primary.GetState(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, state)

	state, err = fallback.GetState(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFailover_SticksToFallbackUntilRecheck(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryStateRepository(time.Hour)
	repo := NewFailoverStateRepository(brokenStateRepository{}, fallback, &logger)
	ctx := context.Background()

	// первый вызов помечает основное хранилище недоступным
	_, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.True(t, repo.isDown.Load())

	// до истечения минуты основное хранилище не опрашивается
	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: "main_menu"}))
	state, err := fallback.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
}
