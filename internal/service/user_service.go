package service

import (
	"context"

	"barberbot/internal/config"
	"barberbot/internal/domain"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store     domain.Store
	config    *config.Config
	logger    *zerolog.Logger
	adminsMap map[int64]bool
}

func NewUserService(store domain.Store, config *config.Config, logger *zerolog.Logger) *UserService {
	adminsMap := make(map[int64]bool)
	for _, id := range config.Admins {
		adminsMap[id] = true
	}

	return &UserService{
		store:     store,
		config:    config,
		logger:    logger,
		adminsMap: adminsMap,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.adminsMap[userID]
}

// RegisterUser фиксирует клиента при любом входящем сообщении.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) error {
	return s.store.UpsertUser(ctx, user)
}

func (s *UserService) SetPhone(ctx context.Context, userID int64, phone string) error {
	return s.store.SetUserPhone(ctx, userID, phone)
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *UserService) TopClients(ctx context.Context, limit int) ([]*models.ClientStat, error) {
	return s.store.ListClientsByAppointmentCount(ctx, limit)
}
