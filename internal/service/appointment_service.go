package service

import (
	"context"
	"time"

	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/models"
	"barberbot/internal/schedule"

	"github.com/rs/zerolog"
)

// AppointmentService владеет жизненным циклом записи: создание, отмена,
// выборки для клиента и админки. Побочные эффекты (уведомления, Google
// Sheets) уходят через шину событий и очередь синхронизации и не влияют
// на результат операции.
type AppointmentService struct {
	store      domain.Store
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger
}

func NewAppointmentService(store domain.Store, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		store:      store,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
	}
}

// Book создает активную запись. Занятый слот возвращается как
// database.ErrSlotTaken без побочных эффектов.
func (s *AppointmentService) Book(ctx context.Context, appointment *models.Appointment) error {
	if err := s.store.CreateAppointment(ctx, appointment); err != nil {
		return err
	}

	s.publishEvent(ctx, events.EventAppointmentBooked, appointment)
	s.enqueueSync(ctx, models.SyncTaskAppend, appointment)
	return nil
}

// Cancel отменяет запись по id. Отсутствующая или уже отмененная запись
// возвращает database.ErrAppointmentNotFound.
func (s *AppointmentService) Cancel(ctx context.Context, id int64) error {
	if err := s.store.CancelAppointment(ctx, id); err != nil {
		return err
	}

	appointment, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("не удалось перечитать отмененную запись")
		return nil
	}

	s.publishEvent(ctx, events.EventAppointmentCanceled, appointment)
	s.enqueueSync(ctx, models.SyncTaskUpdateStatus, appointment)
	return nil
}

// FindActive ближайшая активная запись клиента начиная с сегодняшнего дня.
func (s *AppointmentService) FindActive(ctx context.Context, userID int64, now time.Time) (*models.Appointment, error) {
	return s.store.FindActiveAppointment(ctx, userID, now.Format(models.DateLayout))
}

// AvailableSlots сетка рабочих часов даты с отметками занятости.
func (s *AppointmentService) AvailableSlots(ctx context.Context, date string) ([]schedule.Slot, error) {
	booked, err := s.store.ListBookedTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	return schedule.Resolve(booked), nil
}

func (s *AppointmentService) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

func (s *AppointmentService) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Appointment, error) {
	return s.store.ListAppointmentsForUser(ctx, userID, limit)
}

func (s *AppointmentService) ListForDate(ctx context.Context, date string) ([]*models.AppointmentDetail, error) {
	return s.store.ListAppointmentsForDate(ctx, date)
}

func (s *AppointmentService) ListAll(ctx context.Context, limit int) ([]*models.AppointmentDetail, error) {
	return s.store.ListAllAppointments(ctx, limit)
}

func (s *AppointmentService) publishEvent(ctx context.Context, eventType string, appointment *models.Appointment) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		Service:       appointment.Service,
		Price:         appointment.Price,
		Date:          appointment.Date,
		Time:          appointment.Time,
		Status:        appointment.Status,
	}

	// Контакты клиента подтягиваются лучшим усилием: событие уходит и без них.
	if client, err := s.store.GetUser(ctx, appointment.UserID); err == nil {
		payload.ClientName = client.FullName()
		payload.Username = client.Username
		payload.PhoneNumber = client.PhoneNumber
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", appointment.ID).Msg("publish event error")
	}
}

func (s *AppointmentService) enqueueSync(ctx context.Context, taskType string, appointment *models.Appointment) {
	if s.syncWorker == nil {
		return
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, appointment.ID, appointment); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", appointment.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
