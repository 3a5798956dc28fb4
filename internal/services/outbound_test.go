package services

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"taskmanager/internal/models"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestEmailService_SendNoticeEmail(t *testing.T) {
	d := &fakeDialer{}
	svc := newEmailService(d, "noreply@example.com")

	require.NoError(t, svc.SendNoticeEmail(nil, "ignored"))
	assert.Empty(t, d.sent)

	require.NoError(t, svc.SendNoticeEmail([]string{"a@example.com", "b@example.com"}, "New task"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, d.sent[0].GetHeader("Bcc"))
}

func TestEmailService_BreakerOpensAfterFailures(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	svc := newEmailService(d, "noreply@example.com")

	for i := 0; i < 4; i++ {
		assert.Error(t, svc.SendWelcomeEmail("a@example.com", "Ann"))
	}
	attempts := len(d.sent)

	err := svc.SendWelcomeEmail("a@example.com", "Ann")
	assert.Error(t, err)
	assert.Equal(t, attempts, len(d.sent), "open breaker must not dial")
}

func TestEmailSink_CollectsAddresses(t *testing.T) {
	d := &fakeDialer{}
	sink := EmailSink{Email: newEmailService(d, "noreply@example.com")}

	err := sink.Deliver(context.Background(), &models.Notice{Text: "x"}, []models.User{
		{Email: "a@example.com"}, {Email: ""},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"a@example.com"}, d.sent[0].GetHeader("Bcc"))
}

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramService_Deliver(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegramService(bot, 42)

	err := tg.Deliver(context.Background(), &models.Notice{Text: "Task <b>"}, []models.User{{Name: "Ann"}, {Name: "Bob"}})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "Task &lt;b&gt;")
	assert.Contains(t, msg.Text, "Ann, Bob")
}

func TestTelegramService_NoChatSkips(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegramService(bot, 0)
	require.NoError(t, tg.SendMessage("hello"))
	assert.Empty(t, bot.sent)
}
