package services

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrTelegramNotConfigured = errors.New("telegram bot is not configured")

// TelegramService delivers report summaries to a Telegram chat
type TelegramService struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramService connects to the Bot API. An empty token yields a
// service that reports itself as unconfigured.
func NewTelegramService(token string) (*TelegramService, error) {
	return NewTelegramServiceWithEndpoint(token, tgbotapi.APIEndpoint)
}

// NewTelegramServiceWithEndpoint is NewTelegramService against a custom Bot API endpoint
func NewTelegramServiceWithEndpoint(token, endpoint string) (*TelegramService, error) {
	if token == "" {
		return &TelegramService{}, nil
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return &TelegramService{bot: bot}, nil
}

// IsConfigured returns true if a bot is connected
func (s *TelegramService) IsConfigured() bool {
	return s != nil && s.bot != nil
}

// SendMessage sends a plain text message to chatID
func (s *TelegramService) SendMessage(chatID int64, text string) error {
	if !s.IsConfigured() {
		return ErrTelegramNotConfigured
	}
	if _, err := s.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
