package services

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
)

// telegramSender is satisfied by *tgbotapi.BotAPI.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService posts notices into the team chat.
type TelegramService struct {
	bot     telegramSender
	chatID  int64
	breaker *gobreaker.CircuitBreaker
}

func NewTelegramService(botToken string, chatID int64) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logging.Logger.Infof("[tg] authorized as @%s", bot.Self.UserName)
	return newTelegramService(bot, chatID), nil
}

func newTelegramService(bot telegramSender, chatID int64) *TelegramService {
	return &TelegramService{
		bot:     bot,
		chatID:  chatID,
		breaker: newBreaker("telegram-cb", 30*time.Second),
	}
}

func (t *TelegramService) SendMessage(text string) error {
	if t == nil || t.chatID == 0 {
		logging.Logger.Debug("[tg][skip] chat not configured")
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return t.bot.Send(msg)
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *TelegramService) Name() string { return "telegram" }

func (t *TelegramService) Deliver(_ context.Context, notice *models.Notice, recipients []models.User) error {
	text := "📌 <b>" + html.EscapeString(notice.Text) + "</b>"
	if len(recipients) > 0 {
		text += "\n👥 "
		for i, u := range recipients {
			if i > 0 {
				text += ", "
			}
			text += html.EscapeString(u.Name)
		}
	}
	return t.SendMessage(text)
}
