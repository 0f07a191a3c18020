package domain

import (
	"context"
	"time"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Store interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	SetUserPhone(ctx context.Context, userID int64, phone string) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	ListClientsByAppointmentCount(ctx context.Context, limit int) ([]*models.ClientStat, error)

	FindActiveAppointment(ctx context.Context, userID int64, notBefore string) (*models.Appointment, error)
	ListBookedTimes(ctx context.Context, date string) ([]string, error)
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	CancelAppointment(ctx context.Context, id int64) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	ListAppointmentsForUser(ctx context.Context, userID int64, limit int) ([]*models.Appointment, error)
	ListAppointmentsForDate(ctx context.Context, date string) ([]*models.AppointmentDetail, error)
	ListAllAppointments(ctx context.Context, limit int) ([]*models.AppointmentDetail, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	AppendAppointment(ctx context.Context, appointment *models.Appointment, client *models.User) error
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error
	ReplaceAppointmentsSheet(ctx context.Context, appointments []*models.AppointmentDetail) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, appointmentID int64, appointment *models.Appointment) error
}
