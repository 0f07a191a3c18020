package bot

import (
	"context"

	"barberbot/internal/conversation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	userID := msg.From.ID
	chatID := msg.Chat.ID

	// Карточка клиента обновляется на любом входящем сообщении
	if err := b.users.RegisterUser(ctx, userFromMessage(msg)); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to register user")
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Contact != nil {
		b.advance(ctx, userID, chatID, 0, "", conversation.Event{
			Kind: conversation.KindContact,
			Data: msg.Contact.PhoneNumber,
		})
		return
	}

	switch msg.Text {
	case conversation.BtnNewAppointment:
		res, err := b.machine.StartBooking(ctx, userID)
		if err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to start booking")
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		b.apply(ctx, userID, chatID, 0, "", res)
		return

	case conversation.BtnMyAppointments:
		res, err := b.machine.MyAppointments(ctx, userID)
		if err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to list appointments")
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
		b.apply(ctx, userID, chatID, 0, "", res)
		return

	case conversation.BtnContact:
		b.apply(ctx, userID, chatID, 0, "", b.machine.ContactInfo())
		return
	}

	if b.handleAdminMessage(ctx, msg) {
		return
	}

	// Остальной текст уходит в машину: шаг контакта ждет номер телефона
	b.advance(ctx, userID, chatID, 0, "", conversation.Event{
		Kind: conversation.KindText,
		Data: msg.Text,
	})
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if err := b.stateService.ClearUserState(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
		}
		b.apply(ctx, userID, chatID, 0, "", b.machine.Greet(msg.From.FirstName, b.isAdmin(userID)))

	case "cancel":
		if err := b.stateService.ClearUserState(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
		}
		b.sendMessage(chatID, "Amaliyot bekor qilindi. Asosiy menyuga qaytdingiz.")

	default:
		b.apply(ctx, userID, chatID, 0, "", b.machine.Prompt())
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	b.advance(ctx, userID, chatID, messageID, query.ID, conversation.Event{
		Kind: conversation.KindCallback,
		Data: query.Data,
	})
}

func (b *Bot) advance(ctx context.Context, userID, chatID int64, messageID int, callbackID string, ev conversation.Event) {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user state")
	}

	res, err := b.machine.Advance(ctx, userID, b.isAdmin(userID), state, ev)
	if err != nil {
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Conversation advance failed")
		if callbackID != "" {
			b.answerCallback(callbackID, "", false)
		}
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.apply(ctx, userID, chatID, messageID, callbackID, res)
}
