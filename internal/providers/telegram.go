package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/models"
	"github.com/Hirdyansh9/Orderbook/internal/utils"
)

// MessageSender is the part of *bot.Bot the forwarder uses.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

// Telegram forwards notifications to the chats users have linked.
type Telegram struct {
	sender  MessageSender
	chats   map[string]int64 // userID -> chatID
	limiter *rate.Limiter
	logger  *logging.Logger
	retries int
	delay   time.Duration
}

// NewTelegram builds a forwarder backed by a bot for token.
func NewTelegram(token string, chats map[string]int64, ratePerSecond int, logger *logging.Logger) (*Telegram, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return NewTelegramWithSender(b, chats, ratePerSecond, logger), nil
}

func NewTelegramWithSender(sender MessageSender, chats map[string]int64, ratePerSecond int, logger *logging.Logger) *Telegram {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Telegram{
		sender:  sender,
		chats:   chats,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		logger:  logger,
		retries: 3,
		delay:   time.Second,
	}
}

// Publish sends n to the recipient's chat. Users without a linked chat are skipped.
func (t *Telegram) Publish(ctx context.Context, n models.Notification) error {
	chatID, ok := t.chats[n.UserID]
	if !ok {
		return nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   FormatText(n),
	}
	return utils.Retry(ctx, t.logger, t.retries, t.delay, func() error {
		if _, err := t.sender.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", chatID, err)
		}
		return nil
	})
}

var severityIcons = map[models.Severity]string{
	models.SeverityInfo:    "ℹ️",
	models.SeverityWarning: "⚠️",
	models.SeverityError:   "❗",
	models.SeveritySuccess: "✅",
}

// FormatText renders a notification as a plain-text chat message.
func FormatText(n models.Notification) string {
	icon, ok := severityIcons[n.Type]
	if !ok {
		icon = severityIcons[models.SeverityInfo]
	}
	return fmt.Sprintf("%s %s\n%s", icon, n.Title, n.Message)
}
