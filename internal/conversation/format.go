package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"barberbot/internal/models"
)

// FormatPrice разделяет тысячи запятой: 40000 -> "40,000 so'm".
func FormatPrice(price int64) string {
	s := strconv.FormatInt(price, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	offset := len(s) % 3
	if offset == 0 {
		offset = 3
	}
	for i, r := range s {
		if i != 0 && (i-offset)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " so'm"
}

func appointmentSummary(a *models.Appointment) string {
	return fmt.Sprintf(
		"🧔 Xizmat: %s\n📅 Sana: %s\n🕒 Vaqt: %s",
		a.Service, a.Date, a.Time,
	)
}

func statusLine(status string) string {
	if status == models.StatusScheduled {
		return "✅ Rejalashtirilgan"
	}
	return "❌ Bekor qilingan"
}
