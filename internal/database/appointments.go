package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

// FindActiveAppointment возвращает ближайшую активную запись клиента с датой
// не раньше notBefore (дд.мм.гггг), упорядоченную по (дата, время).
// nil без ошибки — активной записи нет.
func (db *DB) FindActiveAppointment(ctx context.Context, userID int64, notBefore string) (*models.Appointment, error) {
	query := `SELECT id, user_id, service, price, date, time, status, created_at
              FROM appointments
              WHERE user_id = ? AND status = ? AND ` + isoDateExpr + ` >= ?
              ORDER BY ` + isoDateExpr + `, time
              LIMIT 1`

	a := &models.Appointment{}
	err := db.QueryRowContext(ctx, query, userID, models.StatusScheduled, isoKey(notBefore)).Scan(
		&a.ID, &a.UserID, &a.Service, &a.Price, &a.Date, &a.Time, &a.Status, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active appointment: %w", err)
	}
	return a, nil
}

// ListBookedTimes все занятые слоты даты: время активных записей.
func (db *DB) ListBookedTimes(ctx context.Context, date string) ([]string, error) {
	query := `SELECT time FROM appointments WHERE date = ? AND status = ?`
	rows, err := db.QueryContext(ctx, query, date, models.StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// CreateAppointment вставляет новую активную запись. Доступность слота здесь
// повторно не проверяется: гонку двух одновременных вставок разруливает
// частичный уникальный индекс, проигравший получает ErrSlotTaken.
func (db *DB) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	query := `INSERT INTO appointments (user_id, service, price, date, time, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		a.UserID,
		a.Service,
		a.Price,
		a.Date,
		a.Time,
		models.StatusScheduled,
		now,
	)
	if err != nil {
		if isConstraintErr(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	a.Status = models.StatusScheduled
	a.CreatedAt = now
	return nil
}

// CancelAppointment переводит запись в canceled. По отсутствующему или уже
// отмененному id возвращает ErrAppointmentNotFound, а не падает: ссылка в
// черновике диалога могла устареть.
func (db *DB) CancelAppointment(ctx context.Context, id int64) error {
	query := `UPDATE appointments SET status = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.StatusCanceled, id, models.StatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT id, user_id, service, price, date, time, status, created_at
              FROM appointments WHERE id = ?`

	a := &models.Appointment{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.Service, &a.Price, &a.Date, &a.Time, &a.Status, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// ListAppointmentsForUser последние записи клиента, новые сверху.
func (db *DB) ListAppointmentsForUser(ctx context.Context, userID int64, limit int) ([]*models.Appointment, error) {
	query := `SELECT id, user_id, service, price, date, time, status, created_at
              FROM appointments
              WHERE user_id = ?
              ORDER BY ` + isoDateExpr + ` DESC, time DESC
              LIMIT ?`
	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows *sql.Rows) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	for rows.Next() {
		a := &models.Appointment{}
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Service, &a.Price, &a.Date, &a.Time, &a.Status, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// ListAppointmentsForDate записи даты вместе с контактами клиентов, по времени.
func (db *DB) ListAppointmentsForDate(ctx context.Context, date string) ([]*models.AppointmentDetail, error) {
	query := `SELECT a.id, a.user_id, a.service, a.price, a.date, a.time, a.status, a.created_at,
	                 u.first_name, u.last_name, COALESCE(u.phone_number, '')
              FROM appointments a
              JOIN users u ON a.user_id = u.user_id
              WHERE a.date = ?
              ORDER BY a.time`
	rows, err := db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for date: %w", err)
	}
	defer rows.Close()
	return scanAppointmentDetails(rows)
}

// ListAllAppointments последние записи по всей базе, новые сверху.
func (db *DB) ListAllAppointments(ctx context.Context, limit int) ([]*models.AppointmentDetail, error) {
	query := `SELECT a.id, a.user_id, a.service, a.price, a.date, a.time, a.status, a.created_at,
	                 u.first_name, u.last_name, COALESCE(u.phone_number, '')
              FROM appointments a
              JOIN users u ON a.user_id = u.user_id
              ORDER BY ` + isoDateExpr + ` DESC, a.time DESC
              LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list all appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointmentDetails(rows)
}

func scanAppointmentDetails(rows *sql.Rows) ([]*models.AppointmentDetail, error) {
	var details []*models.AppointmentDetail
	for rows.Next() {
		d := &models.AppointmentDetail{}
		err := rows.Scan(
			&d.ID, &d.UserID, &d.Service, &d.Price, &d.Date, &d.Time, &d.Status, &d.CreatedAt,
			&d.FirstName, &d.LastName, &d.PhoneNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
