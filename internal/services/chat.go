package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
)

const (
	chatSystemPrompt = "You are a helpful expense planner AI. Provide helpful, friendly, and clear responses for expense planning."
	chatMaxTokens    = 200
	chatTemperature  = 0.7

	chatUnavailableReply = "Sorry, I am unable to process your request right now. Please try again later."
)

// ChatProvider completes one system+user exchange with an LLM
type ChatProvider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// AssistantService answers expense planning questions. It never returns an
// error: configuration and upstream problems become canned replies.
type AssistantService struct {
	provider         ChatProvider
	notConfiguredMsg string
	timeout          time.Duration
}

// NewAssistantService wraps provider. A nil provider answers every message
// with notConfiguredMsg.
func NewAssistantService(provider ChatProvider, notConfiguredMsg string) *AssistantService {
	return &AssistantService{
		provider:         provider,
		notConfiguredMsg: notConfiguredMsg,
		timeout:          30 * time.Second,
	}
}

// NewAssistantFromConfig picks the provider named by CHAT_PROVIDER
func NewAssistantFromConfig(cfg *config.Config) *AssistantService {
	switch strings.ToLower(cfg.ChatProvider) {
	case "gemini":
		msg := "Gemini service is not configured. Please set GEMINI_API_KEY environment variable."
		if cfg.GeminiAPIKey == "" {
			return NewAssistantService(nil, msg)
		}
		p, err := NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Warn("Gemini chat provider unavailable")
			return NewAssistantService(nil, msg)
		}
		return NewAssistantService(p, msg)
	default:
		msg := "OpenAI service is not configured. Please set OPENAI_API_KEY environment variable."
		if cfg.OpenAIAPIKey == "" {
			return NewAssistantService(nil, msg)
		}
		return NewAssistantService(NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""), msg)
	}
}

// IsConfigured reports whether a provider is attached
func (s *AssistantService) IsConfigured() bool {
	return s.provider != nil
}

// Reply returns the assistant's answer to message
func (s *AssistantService) Reply(ctx context.Context, message string) string {
	if s.provider == nil {
		return s.notConfiguredMsg
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.Complete(ctx, chatSystemPrompt, message)
	if err != nil {
		log.WithError(err).Error("Chat provider request failed")
		return chatUnavailableReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Warn("Chat provider returned an empty reply")
		return chatUnavailableReply
	}
	return reply
}

// Close releases the provider's client if it holds one
func (s *AssistantService) Close() error {
	if c, ok := s.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func errNoChoices(provider string) error {
	return fmt.Errorf("%s returned no choices", provider)
}
