package bot

import (
	"barberbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotWrapper адаптер tgbotapi.BotAPI под domain.TelegramSender: поле Self
// закрывается методом GetSelf, остальные методы пробрасываются встраиванием.
type BotWrapper struct {
	*tgbotapi.BotAPI
}

var _ domain.TelegramSender = (*BotWrapper)(nil)

func NewBotWrapper(api *tgbotapi.BotAPI) *BotWrapper {
	return &BotWrapper{BotAPI: api}
}

func (w *BotWrapper) GetSelf() tgbotapi.User {
	return w.Self
}
