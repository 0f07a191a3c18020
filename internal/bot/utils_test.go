package bot

import (
	"strings"
	"testing"

	"barberbot/internal/database"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendChunked_ShortMessage(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	b := &Bot{tgService: tg, logger: &logger}

	b.sendChunked(1, "salom")

	require.Len(t, tg.messages, 1)
	assert.Equal(t, "salom", tg.messages[0].Text)
}

func TestSendChunked_LongMessage(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	b := &Bot{tgService: tg, logger: &logger}

	text := strings.Repeat("a", models.MaxMessageLength*2+10)
	b.sendChunked(1, text)

	require.Len(t, tg.messages, 3)
	assert.Len(t, tg.messages[0].Text, models.MaxMessageLength)
	assert.Len(t, tg.messages[1].Text, models.MaxMessageLength)
	assert.Len(t, tg.messages[2].Text, 10)
}

func TestSendChunked_MultibyteRunes(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	b := &Bot{tgService: tg, logger: &logger}

	// кириллица по два байта на символ, резать надо по рунам
	text := strings.Repeat("ж", models.MaxMessageLength+5)
	b.sendChunked(1, text)

	require.Len(t, tg.messages, 2)
	assert.Equal(t, models.MaxMessageLength, len([]rune(tg.messages[0].Text)))
	assert.Equal(t, 5, len([]rune(tg.messages[1].Text)))

	// склейка чанков дает исходный текст без порчи рун
	assert.Equal(t, text, tg.messages[0].Text+tg.messages[1].Text)
}

func TestSendChunked_Empty(t *testing.T) {
	logger := zerolog.Nop()
	tg := &fakeTelegramService{}
	b := &Bot{tgService: tg, logger: &logger}

	b.sendChunked(1, "")
	assert.Empty(t, tg.messages)
}

func TestGetErrorMessage(t *testing.T) {
	b := &Bot{}
	assert.Contains(t, b.getErrorMessage(database.ErrSlotTaken), "band qilindi")
	assert.Contains(t, b.getErrorMessage(database.ErrAppointmentNotFound), "topilmadi")
	assert.Contains(t, b.getErrorMessage(assert.AnError), "Xatolik yuz berdi")
	assert.Empty(t, b.getErrorMessage(nil))
}
