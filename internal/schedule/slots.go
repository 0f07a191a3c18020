// Package schedule владеет сеткой рабочих часов и календарем записи.
package schedule

import (
	"fmt"
	"time"

	"barberbot/internal/models"
)

// WorkingHours фиксированная сетка слотов: один час, 12 слотов в день.
var WorkingHours = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
	"15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
}

// Slot один слот сетки с признаком занятости.
type Slot struct {
	Time   string
	Booked bool
}

// Resolve раскладывает сетку на свободные и занятые слоты, сохраняя порядок
// каталога. Занятым считается ровно то, что вернуло хранилище на эту дату:
// прошедшие часы текущего дня отдельно не отсекаются.
func Resolve(bookedTimes []string) []Slot {
	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	slots := make([]Slot, 0, len(WorkingHours))
	for _, hour := range WorkingHours {
		slots = append(slots, Slot{Time: hour, Booked: booked[hour]})
	}
	return slots
}

// IsWorkingHour проверяет, что время принадлежит сетке.
func IsWorkingHour(t string) bool {
	for _, hour := range WorkingHours {
		if hour == t {
			return true
		}
	}
	return false
}

// UpcomingDates возвращает сегодня и следующие шесть дней в формате дд.мм.гггг.
// Окно пересчитывается при каждом показе шага выбора даты.
func UpcomingDates(now time.Time) []string {
	dates := make([]string, 0, models.BookingWindowDays)
	for i := 0; i < models.BookingWindowDays; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(models.DateLayout))
	}
	return dates
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Dushanba",
	time.Tuesday:   "Seshanba",
	time.Wednesday: "Chorshanba",
	time.Thursday:  "Payshanba",
	time.Friday:    "Juma",
	time.Saturday:  "Shanba",
	time.Sunday:    "Yakshanba",
}

// DateLabel подпись кнопки календаря: "15.06.2025 (Yakshanba)".
func DateLabel(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s (%s)", date, weekdayNames[t.Weekday()])
}

// ParseDate разбирает дату в формате каталога.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %s: %w", date, err)
	}
	return t, nil
}
