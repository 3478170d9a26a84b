package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ErrNoChat is returned when a message has no destination chat
var ErrNoChat = errors.New("no chat configured")

// botSender is the subset of tgbotapi.BotAPI used for sending
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramConfig holds Telegram notifier configuration
type TelegramConfig struct {
	Token        string
	APIEndpoint  string        // e.g., tgbotapi.APIEndpoint; empty uses the public API
	SendInterval time.Duration // minimum gap between two messages
}

// TelegramNotifier sends plain-text messages to Telegram chats, one at a time
type TelegramNotifier struct {
	bot      botSender
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier connects to the bot API and verifies the token
func NewTelegramNotifier(config TelegramConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(config.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	n := newTelegramNotifier(bot, config.SendInterval, logger)
	n.logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier initialized")
	return n, nil
}

func newTelegramNotifier(bot botSender, interval time.Duration, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      bot,
		interval: interval,
		logger:   logger.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends text to chatID, waiting out the send interval first
func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return ErrNoChat
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.interval - time.Since(n.lastSend); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	n.lastSend = time.Now()
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debug().Int64("chat_id", chatID).Int("length", len(text)).Msg("telegram message sent")
	return nil
}
