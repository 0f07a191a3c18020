package bot

import (
	"errors"
	"testing"

	"barberbot/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegramService записывает исходящие сообщения вместо похода в Bot API.
// Чаты из failChats отвечают ошибкой, как заблокировавший бота клиент.
type fakeTelegramService struct {
	sent     []tgbotapi.Chattable
	messages []struct {
		ChatID int64
		Text   string
	}
	callbacks []string
	failChats map[int64]bool
}

func (f *fakeTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	if f.failChats[chatID] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	f.messages = append(f.messages, struct {
		ChatID int64
		Text   string
	}{chatID, text})
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegramService) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	return f.SendMessage(chatID, text)
}

func (f *fakeTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return f.SendMessage(chatID, text)
}

func (f *fakeTelegramService) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return f.SendMessage(chatID, text)
}

func (f *fakeTelegramService) AnswerCallback(callbackID, text string) error {
	f.callbacks = append(f.callbacks, text)
	return nil
}

func (f *fakeTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "barberbot_test"}
}

func (f *fakeTelegramService) StopReceivingUpdates() {}

// newTestMetrics собирает Metrics без promauto, чтобы не трогать
// глобальный реестр между тестами.
func newTestMetrics() *Metrics {
	return &Metrics{
		AppointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_created_total",
		}, []string{"service"}),
		AppointmentsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_canceled_total",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
		}, []string{"target"}),
	}
}

func bookedPayload() events.AppointmentEventPayload {
	return events.AppointmentEventPayload{
		AppointmentID: 7,
		UserID:        100,
		ClientName:    "Anvar Karimov",
		PhoneNumber:   "+998901234567",
		Service:       "Soqol olish",
		Price:         25000,
		Date:          "15.06.2025",
		Time:          "10:00",
		Status:        "scheduled",
	}
}

func TestNotifier_Booked(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	bus := events.NewEventBus()

	n := NewNotifier(tg, "@barberuzpro", []int64{1, 2}, 100, nil, &logger)
	n.Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventAppointmentBooked, bookedPayload()))

	// одно сообщение в канал
	require.Len(t, tg.sent, 1)
	channelMsg, ok := tg.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "@barberuzpro", channelMsg.ChannelUsername)
	assert.Contains(t, channelMsg.Text, "YANGI BUYURTMA")
	assert.Contains(t, channelMsg.Text, "Anvar Karimov")
	assert.Contains(t, channelMsg.Text, "25000 so'm")

	// и по личному сообщению каждому админу
	require.Len(t, tg.messages, 2)
	assert.Equal(t, int64(1), tg.messages[0].ChatID)
	assert.Equal(t, int64(2), tg.messages[1].ChatID)
	assert.Contains(t, tg.messages[0].Text, "#7")
}

func TestNotifier_BookedWithoutChannel(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	bus := events.NewEventBus()

	n := NewNotifier(tg, "", []int64{1}, 100, nil, &logger)
	n.Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventAppointmentBooked, bookedPayload()))

	assert.Empty(t, tg.sent)
	assert.Len(t, tg.messages, 1)
}

func TestNotifier_Canceled(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	bus := events.NewEventBus()

	n := NewNotifier(tg, "@barberuzpro", []int64{1, 2}, 100, nil, &logger)
	n.Register(bus)

	payload := bookedPayload()
	payload.Status = "canceled"
	require.NoError(t, bus.PublishJSON(events.EventAppointmentCanceled, payload))

	// отмена в канал не публикуется, только админам
	assert.Empty(t, tg.sent)
	require.Len(t, tg.messages, 2)
	assert.Contains(t, tg.messages[0].Text, "BEKOR QILINDI")
}

func TestNotifier_CountsAppointments(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	bus := events.NewEventBus()
	m := newTestMetrics()

	n := NewNotifier(tg, "@barberuzpro", []int64{1}, 100, m, &logger)
	n.Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventAppointmentBooked, bookedPayload()))
	require.NoError(t, bus.PublishJSON(events.EventAppointmentBooked, bookedPayload()))

	payload := bookedPayload()
	payload.Status = "canceled"
	require.NoError(t, bus.PublishJSON(events.EventAppointmentCanceled, payload))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AppointmentsCreated.WithLabelValues("Soqol olish")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AppointmentsCanceled))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("channel")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("admin")))
}

func TestNotifier_AdminSendErrorSkipsToNext(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{failChats: map[int64]bool{1: true}}
	bus := events.NewEventBus()
	m := newTestMetrics()

	n := NewNotifier(tg, "", []int64{1, 2}, 100, m, &logger)
	n.Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventAppointmentBooked, bookedPayload()))

	// первый админ недоступен, второй все равно получает сообщение
	require.Len(t, tg.messages, 1)
	assert.Equal(t, int64(2), tg.messages[0].ChatID)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("admin")))
}

func TestNotifier_BadPayload(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	bus := events.NewEventBus()

	n := NewNotifier(tg, "@barberuzpro", []int64{1}, 100, nil, &logger)
	n.Register(bus)

	bus.Publish(&events.Event{Type: events.EventAppointmentBooked, Payload: []byte("not json")})

	assert.Empty(t, tg.sent)
	assert.Empty(t, tg.messages)
}
