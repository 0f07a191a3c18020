package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"barberbot/internal/conversation"

	"github.com/xuri/excelize/v2"
)

// лимит строк выгрузки, чтобы отчет не рос бесконечно
const exportLimit = 1000

// exportToExcel выгружает последние записи в xlsx для админа.
func (b *Bot) exportToExcel(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	appointments, err := b.appointments.ListAll(ctx, exportLimit)
	if err != nil {
		return "", fmt.Errorf("error getting appointments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Buyurtmalar"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Mijoz", "Telefon", "Xizmat", "Sana", "Vaqt", "Narxi", "Holat"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	for row, a := range appointments {
		values := []interface{}{
			a.ID,
			a.ClientName(),
			phoneOrDefault(a.PhoneNumber),
			a.Service,
			a.Date,
			a.Time,
			conversation.FormatPrice(a.Price),
			a.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", "H", 15)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("appointments_%s.xlsx", time.Now().Format("2006-01-02_15-04"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("rows", len(appointments)).Msg("Excel файл создан")
	return filePath, nil
}
