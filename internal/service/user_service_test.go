package service

import (
	"context"
	"path/filepath"
	"testing"

	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserService(t *testing.T) *UserService {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "users.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Admins: []int64{1, 2}}
	return NewUserService(db, cfg, &logger)
}

func TestUserService_IsAdmin(t *testing.T) {
	svc := setupUserService(t)

	assert.True(t, svc.IsAdmin(1))
	assert.True(t, svc.IsAdmin(2))
	assert.False(t, svc.IsAdmin(3))
	assert.False(t, svc.IsAdmin(0))
}

func TestUserService_RegisterAndPhone(t *testing.T) {
	svc := setupUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.RegisterUser(ctx, &models.User{UserID: 100, FirstName: "Anvar"}))
	require.NoError(t, svc.SetPhone(ctx, 100, "+998901234567"))

	user, err := svc.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", user.PhoneNumber)

	users, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
