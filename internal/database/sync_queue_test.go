package database

import (
	"context"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncTask(appointmentID int64) *models.SyncTask {
	return &models.SyncTask{
		TaskType:      models.SyncTaskAppend,
		AppointmentID: appointmentID,
		Payload:       `{"appointment_id":1}`,
		Status:        "pending",
	}
}

func TestCreateAndGetPendingSyncTasks(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	task := newSyncTask(1)
	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.NotZero(t, task.ID)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.SyncTaskAppend, tasks[0].TaskType)
	assert.Equal(t, int64(1), tasks[0].AppointmentID)
}

func TestUpdateSyncTaskStatus_Retry(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	task := newSyncTask(1)
	require.NoError(t, db.CreateSyncTask(ctx, task))

	// retry в будущем не попадает в выборку, пока срок не наступил
	next := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets unavailable", &next))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// а с прошедшим сроком возвращается с увеличенным счетчиком
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets unavailable", &past))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].RetryCount)
	assert.Equal(t, "sheets unavailable", tasks[0].LastError)
}

func TestUpdateSyncTaskStatus_Completed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	task := newSyncTask(1)
	require.NoError(t, db.CreateSyncTask(ctx, task))

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "completed", "", nil))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGetFailedSyncTasks(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	task := newSyncTask(1)
	require.NoError(t, db.CreateSyncTask(ctx, task))
	other := newSyncTask(2)
	require.NoError(t, db.CreateSyncTask(ctx, other))

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "failed", "gave up", nil))

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, task.ID, failed[0].ID)
	assert.Equal(t, "gave up", failed[0].LastError)
	require.NotNil(t, failed[0].ProcessedAt)
}
