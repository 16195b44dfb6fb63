package notify

import (
	"context"
	"fmt"

	"kitchenstock/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts alerts to a single chat.
type TelegramAlerter struct {
	bot    Sender
	chatID int64
}

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return NewTelegramAlerterWithSender(bot, chatID), nil
}

func NewTelegramAlerterWithSender(bot Sender, chatID int64) *TelegramAlerter {
	return &TelegramAlerter{bot: bot, chatID: chatID}
}

func (t *TelegramAlerter) LowStock(ctx context.Context, alert models.LowStockAlert) error {
	return t.send(ctx, FormatAlert(alert))
}

// Digest sends a summary of several alerts as one message.
func (t *TelegramAlerter) Digest(ctx context.Context, tenantCode string, alerts []models.LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return t.send(ctx, FormatDigest(tenantCode, alerts))
}

func (t *TelegramAlerter) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
