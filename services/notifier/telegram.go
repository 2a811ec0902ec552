package notifier

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	apperrors "sjsage522/cardwatch/pkg/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends messages through one Telegram bot
type TelegramChannel struct {
	name string
	api  telegramAPI
}

// NewTelegramChannel connects a bot. timeout bounds every API call.
func NewTelegramChannel(name, token string, timeout time.Duration) (*TelegramChannel, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, apperrors.NewConfiguration("connect telegram bot "+name, err)
	}
	return &TelegramChannel{name: name, api: api}, nil
}

// SendText sends a Markdown message without link previews
func (c *TelegramChannel) SendText(ctx context.Context, chatID int64, body string) error {
	if err := ctx.Err(); err != nil {
		return c.classify("send message", err)
	}

	msg := tgbotapi.NewMessage(chatID, body)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := c.api.Send(msg); err != nil {
		return c.classify("send message", err)
	}
	return nil
}

// SendImage uploads the image file at path
func (c *TelegramChannel) SendImage(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return c.classify("send photo", err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.api.Send(photo); err != nil {
		return c.classify("send photo", err)
	}
	return nil
}

// classify marks timeouts so the dispatcher can retry them
func (c *TelegramChannel) classify(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeout(c.name, op, err)
	}
	return apperrors.NewDelivery(c.name, op, err)
}
