package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/config"
)

type fakeProvider struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.system, f.user = systemPrompt, userMessage
	return f.reply, f.err
}

type closingProvider struct {
	fakeProvider
	closed int
}

func (c *closingProvider) Close() error {
	c.closed++
	return nil
}

func TestAssistantClose(t *testing.T) {
	p := &closingProvider{}
	require.NoError(t, NewAssistantService(p, "").Close())
	assert.Equal(t, 1, p.closed)

	assert.NoError(t, NewAssistantService(&fakeProvider{}, "").Close())
	assert.NoError(t, NewAssistantService(nil, "").Close())
}

func TestAssistantReply(t *testing.T) {
	p := &fakeProvider{reply: "  Track daily spends.  "}
	svc := NewAssistantService(p, "not configured")

	assert.Equal(t, "Track daily spends.", svc.Reply(context.Background(), "how do I save?"))
	assert.Equal(t, chatSystemPrompt, p.system)
	assert.Equal(t, "how do I save?", p.user)
}

func TestAssistantFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider ChatProvider
		want     string
	}{
		{"no provider", nil, "not configured"},
		{"upstream error", &fakeProvider{err: errors.New("rate limited")}, chatUnavailableReply},
		{"empty reply", &fakeProvider{reply: "   "}, chatUnavailableReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAssistantService(tt.provider, "not configured")
			assert.Equal(t, tt.want, svc.Reply(context.Background(), "hi"))
		})
	}
}

func TestAssistantFromConfigUnconfigured(t *testing.T) {
	openaiSvc := NewAssistantFromConfig(&config.Config{ChatProvider: "openai"})
	assert.False(t, openaiSvc.IsConfigured())
	assert.Equal(t,
		"OpenAI service is not configured. Please set OPENAI_API_KEY environment variable.",
		openaiSvc.Reply(context.Background(), "hi"))

	geminiSvc := NewAssistantFromConfig(&config.Config{ChatProvider: "Gemini"})
	assert.False(t, geminiSvc.IsConfigured())
	assert.Contains(t, geminiSvc.Reply(context.Background(), "hi"), "GEMINI_API_KEY")
}

func TestOpenAIProviderComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float32 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-3.5-turbo", body.Model)
		assert.Equal(t, chatMaxTokens, body.MaxTokens)
		assert.InDelta(t, chatTemperature, body.Temperature, 0.001)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "budget tips", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Cook at home."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "", srv.URL+"/v1")
	reply, err := p.Complete(context.Background(), chatSystemPrompt, "budget tips")
	require.NoError(t, err)
	assert.Equal(t, "Cook at home.", reply)
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4", srv.URL+"/v1")
	_, err := p.Complete(context.Background(), chatSystemPrompt, "x")
	assert.Error(t, err)
}
