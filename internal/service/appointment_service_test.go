package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"barberbot/internal/database"
	"barberbot/internal/events"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncWorker struct {
	tasks []string
}

func (r *recordingSyncWorker) EnqueueTask(ctx context.Context, taskType string, appointmentID int64, appointment *models.Appointment) error {
	r.tasks = append(r.tasks, taskType)
	return nil
}

func setupAppointmentService(t *testing.T) (*AppointmentService, *database.DB, *events.EventBus, *recordingSyncWorker) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "service.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bus := events.NewEventBus()
	sync := &recordingSyncWorker{}
	svc := NewAppointmentService(db, bus, sync, &logger)

	require.NoError(t, db.UpsertUser(context.Background(), &models.User{
		UserID: 100, Username: "anvar", FirstName: "Anvar", LastName: "Karimov",
	}))
	require.NoError(t, db.SetUserPhone(context.Background(), 100, "+998901234567"))

	return svc, db, bus, sync
}

func TestBook_PublishesEventAndEnqueuesSync(t *testing.T) {
	svc, _, bus, sync := setupAppointmentService(t)
	ctx := context.Background()

	var got events.AppointmentEventPayload
	bus.Subscribe(events.EventAppointmentBooked, func(ev *events.Event) error {
		return json.Unmarshal(ev.Payload, &got)
	})

	a := &models.Appointment{UserID: 100, Service: "Soqol olish", Price: 25000, Date: "15.06.2025", Time: "10:00"}
	require.NoError(t, svc.Book(ctx, a))

	assert.Equal(t, a.ID, got.AppointmentID)
	assert.Equal(t, "Anvar Karimov", got.ClientName)
	assert.Equal(t, "+998901234567", got.PhoneNumber)
	assert.Equal(t, int64(25000), got.Price)
	assert.Equal(t, []string{models.SyncTaskAppend}, sync.tasks)
}

func TestBook_SlotTakenHasNoSideEffects(t *testing.T) {
	svc, _, bus, sync := setupAppointmentService(t)
	ctx := context.Background()

	published := 0
	bus.Subscribe(events.EventAppointmentBooked, func(ev *events.Event) error {
		published++
		return nil
	})

	first := &models.Appointment{UserID: 100, Service: "Soqol olish", Price: 25000, Date: "15.06.2025", Time: "10:00"}
	require.NoError(t, svc.Book(ctx, first))

	second := &models.Appointment{UserID: 100, Service: "Bosh yuvish", Price: 25000, Date: "15.06.2025", Time: "10:00"}
	err := svc.Book(ctx, second)
	assert.ErrorIs(t, err, database.ErrSlotTaken)

	assert.Equal(t, 1, published)
	assert.Len(t, sync.tasks, 1)
}

func TestCancel_PublishesEventAndEnqueuesStatusSync(t *testing.T) {
	svc, _, bus, sync := setupAppointmentService(t)
	ctx := context.Background()

	var canceled events.AppointmentEventPayload
	bus.Subscribe(events.EventAppointmentCanceled, func(ev *events.Event) error {
		return json.Unmarshal(ev.Payload, &canceled)
	})

	a := &models.Appointment{UserID: 100, Service: "Soqol olish", Price: 25000, Date: "15.06.2025", Time: "10:00"}
	require.NoError(t, svc.Book(ctx, a))
	require.NoError(t, svc.Cancel(ctx, a.ID))

	assert.Equal(t, a.ID, canceled.AppointmentID)
	assert.Equal(t, models.StatusCanceled, canceled.Status)
	assert.Equal(t, []string{models.SyncTaskAppend, models.SyncTaskUpdateStatus}, sync.tasks)

	assert.ErrorIs(t, svc.Cancel(ctx, a.ID), database.ErrAppointmentNotFound)
}

func TestFindActiveAndSlots(t *testing.T) {
	svc, _, _, _ := setupAppointmentService(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	active, err := svc.FindActive(ctx, 100, now)
	require.NoError(t, err)
	assert.Nil(t, active)

	a := &models.Appointment{UserID: 100, Service: "Soqol olish", Price: 25000, Date: "15.06.2025", Time: "10:00"}
	require.NoError(t, svc.Book(ctx, a))

	active, err = svc.FindActive(ctx, 100, now)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, a.ID, active.ID)

	slots, err := svc.AvailableSlots(ctx, "15.06.2025")
	require.NoError(t, err)
	for _, slot := range slots {
		assert.Equal(t, slot.Time == "10:00", slot.Booked, slot.Time)
	}
}
