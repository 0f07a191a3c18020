package bot

import (
	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) isAdmin(userID int64) bool {
	return b.users.IsAdmin(userID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// sendChunked режет длинный отчет по лимиту Telegram. Лимит считается в
// символах, поэтому режем по рунам, а не по байтам.
func (b *Bot) sendChunked(chatID int64, text string) {
	runes := []rune(text)
	for len(runes) > models.MaxMessageLength {
		b.sendMessage(chatID, string(runes[:models.MaxMessageLength]))
		runes = runes[models.MaxMessageLength:]
	}
	if len(runes) > 0 {
		b.sendMessage(chatID, string(runes))
	}
}

func userFromMessage(msg *tgbotapi.Message) *models.User {
	return &models.User{
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
}
