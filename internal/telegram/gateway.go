// Package telegram is the thin platform gateway: it sends replies and
// manages the webhook binding, nothing else.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Gateway wraps the Telegram Bot API client.
type Gateway struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

func New(token string, log *zap.Logger) (*Gateway, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return &Gateway{api: api, log: log}, nil
}

// Send delivers an HTML-formatted message to the chat.
func (g *Gateway) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithMarkup delivers a message with a reply keyboard attached.
func (g *Gateway) SendWithMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SetWebhook binds the given callback URL at the platform.
func (g *Gateway) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := g.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	g.log.Info("webhook configured", zap.String("url", url))
	return nil
}
