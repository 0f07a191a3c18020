package bot

import (
	"context"
	"fmt"
	"time"

	"barberbot/internal/models"
)

// StartReminders раз в сутки напоминает клиентам о завтрашних записях.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tgService == nil {
		return
	}

	go func() {
		hour := 9
		if b.config.Bot.ReminderTime != "" {
			var m int
			_, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &m)
			if err != nil {
				b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		wait := timeUntilNextHour(hour)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)

	appointments, err := b.appointments.ListForDate(ctx, tomorrow)
	if err != nil {
		b.logger.Error().Err(err).Str("date", tomorrow).Msg("reminder: list appointments error")
		return
	}

	for _, a := range appointments {
		if a.Status != models.StatusScheduled {
			continue
		}

		text := fmt.Sprintf(
			"💈 Eslatma: ertaga (%s) soat %s da \"%s\" xizmatiga yozilgansiz.\nKutib qolamiz!",
			a.Date, a.Time, a.Service,
		)
		if _, err := b.tgService.SendMessage(a.UserID, text); err != nil {
			b.logger.Error().Err(err).Int64("user_id", a.UserID).Msg("reminder: send error")
		}
	}
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
