package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"barberbot/internal/domain"
	"barberbot/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notifier рассылает уведомления о записях в канал салона и лично админам.
// Каждый получатель независим: сбой одной отправки логируется и не мешает
// остальным, на исход операции записи рассылка не влияет.
type Notifier struct {
	tg      domain.TelegramService
	channel string
	admins  []int64
	limiter *rate.Limiter
	metrics *Metrics
	logger  *zerolog.Logger
}

func NewNotifier(tg domain.TelegramService, channel string, admins []int64, notifyRPS float64, metrics *Metrics, logger *zerolog.Logger) *Notifier {
	if notifyRPS <= 0 {
		notifyRPS = 10
	}
	return &Notifier{
		tg:      tg,
		channel: channel,
		admins:  admins,
		limiter: rate.NewLimiter(rate.Limit(notifyRPS), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Register подписывает рассылку на события записи.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventAppointmentBooked, n.handleBooked)
	bus.Subscribe(events.EventAppointmentCanceled, n.handleCanceled)
}

func (n *Notifier) handleBooked(event *events.Event) error {
	payload, err := decodePayload(event)
	if err != nil {
		n.logger.Error().Err(err).Msg("notify: bad booked payload")
		return err
	}

	if n.metrics != nil {
		n.metrics.AppointmentsCreated.WithLabelValues(payload.Service).Inc()
	}

	if n.channel != "" {
		channelText := fmt.Sprintf(
			"🔔 YANGI BUYURTMA:\n\n👤 Mijoz: %s\n📱 Telefon: %s\n🧔 Xizmat: %s\n📅 Sana: %s\n🕒 Vaqt: %s\n💰 Narxi: %d so'm",
			payload.ClientName, phoneOrDefault(payload.PhoneNumber),
			payload.Service, payload.Date, payload.Time, payload.Price,
		)
		n.sendToChannel(channelText)
	}

	adminText := fmt.Sprintf(
		"📣 YANGI BUYURTMA!\n\n🆔 Buyurtma raqami: #%d\n👤 Mijoz: %s\n🧔 Xizmat: %s\n📅 Sana: %s\n🕒 Vaqt: %s\n💰 Narxi: %d so'm",
		payload.AppointmentID, payload.ClientName,
		payload.Service, payload.Date, payload.Time, payload.Price,
	)
	n.sendToAdmins(adminText)
	return nil
}

func (n *Notifier) handleCanceled(event *events.Event) error {
	payload, err := decodePayload(event)
	if err != nil {
		n.logger.Error().Err(err).Msg("notify: bad canceled payload")
		return err
	}

	if n.metrics != nil {
		n.metrics.AppointmentsCanceled.Inc()
	}

	text := fmt.Sprintf(
		"❌ BUYURTMA BEKOR QILINDI:\n\n🆔 #%d\n👤 Mijoz: %s\n🧔 Xizmat: %s\n📅 %s, %s",
		payload.AppointmentID, payload.ClientName, payload.Service, payload.Date, payload.Time,
	)
	n.sendToAdmins(text)
	return nil
}

func (n *Notifier) sendToChannel(text string) {
	n.wait()
	if _, err := n.tg.Send(tgbotapi.NewMessageToChannel(n.channel, text)); err != nil {
		n.logger.Error().Err(err).Str("channel", n.channel).Msg("notify: channel send error")
		return
	}
	if n.metrics != nil {
		n.metrics.NotificationsSent.WithLabelValues("channel").Inc()
	}
}

func (n *Notifier) sendToAdmins(text string) {
	for _, adminID := range n.admins {
		n.wait()
		if _, err := n.tg.SendMessage(adminID, text); err != nil {
			n.logger.Error().Err(err).Int64("admin_id", adminID).Msg("notify: admin send error")
			continue
		}
		if n.metrics != nil {
			n.metrics.NotificationsSent.WithLabelValues("admin").Inc()
		}
	}
}

func (n *Notifier) wait() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.Warn().Err(err).Msg("notify: rate limiter wait interrupted")
	}
}

func decodePayload(event *events.Event) (*events.AppointmentEventPayload, error) {
	var payload events.AppointmentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return &payload, nil
}
