package bot

import (
	"context"

	"barberbot/internal/conversation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// apply превращает результат машины диалога в вызовы Telegram и сохраняет
// следующий шаг. Ошибки отправки логируются и не прерывают остальные ответы.
func (b *Bot) apply(ctx context.Context, userID, chatID int64, messageID int, callbackID string, res *conversation.Result) {
	if res == nil {
		return
	}

	if callbackID != "" {
		b.answerCallback(callbackID, res.Alert, res.ShowAlert)
	}

	for _, rep := range res.Replies {
		b.sendReply(chatID, messageID, rep)
	}

	if res.End {
		if err := b.stateService.ClearUserState(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
		}
		return
	}

	if res.Step != "" {
		if err := b.stateService.SetUserState(ctx, userID, res.Step, res.Scratch); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Str("step", res.Step).Msg("Failed to save user state")
		}
	}
}

func (b *Bot) sendReply(chatID int64, messageID int, rep conversation.Reply) {
	if rep.Edit && messageID != 0 {
		var err error
		if len(rep.Inline) > 0 {
			markup := inlineMarkup(rep.Inline)
			_, err = b.tgService.EditMessage(chatID, messageID, rep.Text, &markup)
		} else {
			_, err = b.tgService.EditMessage(chatID, messageID, rep.Text, nil)
		}
		if err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("Failed to edit message")
		}
		return
	}

	var err error
	switch {
	case len(rep.Inline) > 0:
		_, err = b.tgService.SendWithInlineKeyboard(chatID, rep.Text, inlineMarkup(rep.Inline))
	case len(rep.Keyboard) > 0:
		_, err = b.tgService.SendWithKeyboard(chatID, rep.Text, replyMarkup(rep))
	default:
		_, err = b.tgService.SendMessage(chatID, rep.Text)
	}
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

func (b *Bot) answerCallback(callbackID, text string, showAlert bool) {
	var err error
	if showAlert && text != "" {
		_, err = b.tgService.Request(tgbotapi.NewCallbackWithAlert(callbackID, text))
	} else {
		err = b.tgService.AnswerCallback(callbackID, text)
	}
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}

func inlineMarkup(rows [][]conversation.Button) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		keyboard = append(keyboard, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func replyMarkup(rep conversation.Reply) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i, row := range rep.Keyboard {
		var buttons []tgbotapi.KeyboardButton
		for j, label := range row {
			if rep.RequestContact && i == 0 && j == 0 {
				buttons = append(buttons, tgbotapi.NewKeyboardButtonContact(label))
				continue
			}
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = rep.OneTime
	return markup
}
