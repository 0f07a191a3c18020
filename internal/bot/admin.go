package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barberbot/internal/conversation"
	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleAdminMessage перехватывает кнопки админ-панели. Возвращает true,
// если сообщение было админским и обработано.
func (b *Bot) handleAdminMessage(ctx context.Context, msg *tgbotapi.Message) bool {
	switch msg.Text {
	case conversation.BtnAdminPanel,
		conversation.BtnTodayAppointments,
		conversation.BtnAllAppointments,
		conversation.BtnClients,
		conversation.BtnExport,
		conversation.BtnBackToMain:
	default:
		return false
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.isAdmin(userID) {
		if msg.Text == conversation.BtnAdminPanel {
			b.sendMessage(chatID, "Bu funksiya faqat adminlar uchun mavjud.")
			return true
		}
		return false
	}

	switch msg.Text {
	case conversation.BtnAdminPanel:
		b.sendAdminPanel(chatID)
	case conversation.BtnTodayAppointments:
		b.sendTodayAppointments(ctx, chatID)
	case conversation.BtnAllAppointments:
		b.sendAllAppointments(ctx, chatID)
	case conversation.BtnClients:
		b.sendClientsList(ctx, chatID)
	case conversation.BtnExport:
		b.sendExcelExport(ctx, chatID)
	case conversation.BtnBackToMain:
		b.apply(ctx, userID, chatID, 0, "", b.machine.Greet(msg.From.FirstName, true))
	}
	return true
}

func (b *Bot) sendAdminPanel(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(conversation.BtnTodayAppointments)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(conversation.BtnAllAppointments)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(conversation.BtnClients)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(conversation.BtnExport)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(conversation.BtnBackToMain)),
	)
	keyboard.ResizeKeyboard = true

	if _, err := b.tgService.SendWithKeyboard(chatID, "👤 Admin panel:\n\nQuyidagi amallardan birini tanlang:", keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send admin panel")
	}
}

func (b *Bot) sendTodayAppointments(ctx context.Context, chatID int64) {
	today := time.Now().Format(models.DateLayout)
	title := fmt.Sprintf("📋 Bugungi (%s) buyurtmalar:", today)

	appointments, err := b.appointments.ListForDate(ctx, today)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to list today appointments")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(appointments) == 0 {
		b.sendMessage(chatID, title+"\n\nBuyurtmalar yo'q.")
		return
	}

	b.sendChunked(chatID, title+"\n\n"+formatAppointmentDetails(appointments))
}

func (b *Bot) sendAllAppointments(ctx context.Context, chatID int64) {
	appointments, err := b.appointments.ListAll(ctx, models.AllAppointmentsLimit)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to list all appointments")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(appointments) == 0 {
		b.sendMessage(chatID, "Buyurtmalar yo'q.")
		return
	}

	title := fmt.Sprintf("🗓 So'nggi buyurtmalar (max %d):", models.AllAppointmentsLimit)
	b.sendChunked(chatID, title+"\n\n"+formatAppointmentDetails(appointments))
}

func (b *Bot) sendClientsList(ctx context.Context, chatID int64) {
	clients, err := b.users.TopClients(ctx, models.ClientsLeaderboardLimit)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to list clients")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(clients) == 0 {
		b.sendMessage(chatID, "Mijozlar yo'q.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Mijozlar ro'yxati (top %d):\n\n", models.ClientsLeaderboardLimit)
	for _, c := range clients {
		username := "username yo'q"
		if c.Username != "" {
			username = "@" + c.Username
		}
		fmt.Fprintf(&sb,
			"👤 %s (%s)\n🆔 %d\n📱 %s\n📊 Buyurtmalar soni: %d\n📅 Ro'yxatdan o'tgan: %s\n\n",
			c.FullName(), username, c.UserID, phoneOrDefault(c.PhoneNumber),
			c.AppointmentCount, c.RegistrationDate.Format("02.01.2006"),
		)
	}
	b.sendChunked(chatID, sb.String())
}

func (b *Bot) sendExcelExport(ctx context.Context, chatID int64) {
	path, err := b.exportToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to export appointments")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("path", path).Msg("Failed to send export file")
	}
}

func formatAppointmentDetails(appointments []*models.AppointmentDetail) string {
	var sb strings.Builder
	for _, a := range appointments {
		emoji := "✅"
		if a.Status != models.StatusScheduled {
			emoji = "❌"
		}
		fmt.Fprintf(&sb,
			"🆔 #%d\n👤 %s\n📱 %s\n🧔 %s\n📅 %s, %s\n💰 %s\n%s %s\n\n",
			a.ID, a.ClientName(), phoneOrDefault(a.PhoneNumber), a.Service,
			a.Date, a.Time, conversation.FormatPrice(a.Price), emoji, a.Status,
		)
	}
	return sb.String()
}

func phoneOrDefault(phone string) string {
	if phone == "" {
		return "Telefon raqam yo'q"
	}
	return phone
}
