// Package sheets зеркалит записи салона в Google Sheets. Таблица вторична:
// источник истины всегда SQLite, сюда данные доезжают через очередь
// синхронизации.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetName  = "Appointments"
	dataRange  = sheetName + "!A:J"
	clearRange = sheetName + "!A1:J"

	// колонка со статусом в строке записи
	statusColumn = "I"
)

type Service struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zerolog.Logger
}

func NewService(credentialsFile, spreadsheetID string, logger *zerolog.Logger) (*Service, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &Service{
		service:       srv,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// TestConnection проверяет доступ к таблице на старте.
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// AppendAppointment дописывает строку новой записи в конец листа.
func (s *Service) AppendAppointment(ctx context.Context, a *models.Appointment, client *models.User) error {
	var clientName, username, phone string
	if client != nil {
		clientName = client.FullName()
		username = client.Username
		phone = client.PhoneNumber
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{
			a.ID,
			clientName,
			username,
			phone,
			a.Service,
			a.Date,
			a.Time,
			a.Price,
			a.Status,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}},
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, dataRange, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append appointment %d: %w", a.ID, err)
	}
	return nil
}

// UpdateAppointmentStatus находит строку по id записи и меняет статус.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error {
	row, err := s.findRow(ctx, appointmentID)
	if err != nil {
		return err
	}

	cell := fmt.Sprintf("%s!%s%d", sheetName, statusColumn, row)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{{status}}}

	_, err = s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, cell, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update status of appointment %d: %w", appointmentID, err)
	}
	return nil
}

// ReplaceAppointmentsSheet полностью перезаливает лист текущим списком записей.
func (s *Service) ReplaceAppointmentsSheet(ctx context.Context, appointments []*models.AppointmentDetail) error {
	values := [][]interface{}{{
		"ID", "Mijoz", "Username", "Telefon", "Xizmat", "Sana", "Vaqt", "Narxi", "Holat", "Yaratilgan",
	}}
	for _, a := range appointments {
		values = append(values, []interface{}{
			a.ID,
			a.ClientName(),
			"",
			a.PhoneNumber,
			a.Service,
			a.Date,
			a.Time,
			a.Price,
			a.Status,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1:J%d", sheetName, len(values))
	_, err := s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet: %w", err)
	}

	s.logger.Info().Int("rows", len(values)-1).Msg("Лист записей перезалит")
	return nil
}

// findRow ищет строку записи по значению в первой колонке. Лист невелик,
// линейный проход при каждом обновлении приемлем.
func (s *Service) findRow(ctx context.Context, appointmentID int64) (int, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read id column: %w", err)
	}

	want := strconv.FormatInt(appointmentID, 10)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if fmt.Sprintf("%v", row[0]) == want {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("appointment %d not found in sheet", appointmentID)
}
