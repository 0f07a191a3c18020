package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

// UpsertUser создает клиента при первом контакте. Существующей строке
// обновляются только отображаемые поля: registration_date и телефон
// при повторном /start не трогаются.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (user_id, username, first_name, last_name, registration_date)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(user_id) DO UPDATE SET
                username = excluded.username,
                first_name = excluded.first_name,
                last_name = excluded.last_name`
	registered := user.RegistrationDate
	if registered.IsZero() {
		registered = time.Now()
	}
	_, err := db.ExecContext(ctx, query,
		user.UserID,
		user.Username,
		user.FirstName,
		user.LastName,
		registered,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT user_id, username, first_name, last_name,
	                 COALESCE(phone_number, ''), registration_date
              FROM users WHERE user_id = ?`

	var user models.User
	err := db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID, &user.Username, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.RegistrationDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetUserPhone безусловно перезаписывает телефон клиента.
func (db *DB) SetUserPhone(ctx context.Context, userID int64, phone string) error {
	query := `UPDATE users SET phone_number = ? WHERE user_id = ?`
	_, err := db.ExecContext(ctx, query, phone, userID)
	if err != nil {
		return fmt.Errorf("failed to set user phone: %w", err)
	}
	return nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT user_id, username, first_name, last_name,
	                 COALESCE(phone_number, ''), registration_date
              FROM users ORDER BY registration_date DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.UserID, &u.Username, &u.FirstName, &u.LastName,
			&u.PhoneNumber, &u.RegistrationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListClientsByAppointmentCount клиентский рейтинг: топ по числу записей.
func (db *DB) ListClientsByAppointmentCount(ctx context.Context, limit int) ([]*models.ClientStat, error) {
	query := `SELECT u.user_id, u.username, u.first_name, u.last_name,
	                 COALESCE(u.phone_number, ''), u.registration_date,
	                 (SELECT COUNT(*) FROM appointments a WHERE a.user_id = u.user_id) AS appointment_count
              FROM users u
              ORDER BY appointment_count DESC
              LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.ClientStat
	for rows.Next() {
		c := &models.ClientStat{}
		err := rows.Scan(
			&c.UserID, &c.Username, &c.FirstName, &c.LastName,
			&c.PhoneNumber, &c.RegistrationDate, &c.AppointmentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
