package bot

import (
	"errors"

	"barberbot/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSlotTaken) {
		return "⚠️ Bu vaqt hozirgina band qilindi. Iltimos, boshqa vaqtni tanlang."
	}

	if errors.Is(err, database.ErrAppointmentNotFound) {
		return "Bu buyurtma topilmadi. Iltimos, qaytadan urinib ko'ring."
	}

	return "Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring."
}
