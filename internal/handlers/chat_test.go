package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

type echoProvider struct {
	got string
}

func (p *echoProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	p.got = userMessage
	return "  Try setting aside 20% of your pocket money.  ", nil
}

func TestChat(t *testing.T) {
	provider := &echoProvider{}
	h := testHandler()
	h.assistant = services.NewAssistantService(provider, "not configured")

	app := newTestApp(7, models.RoleUser)
	app.Post("/chat", h.Chat)

	status, body := doJSON(t, app, http.MethodPost, "/chat", `{"message":"  How do I save more?  "}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "How do I save more?", provider.got)

	var reply models.ChatResponse
	dataAs(t, body, &reply)
	assert.Equal(t, "Try setting aside 20% of your pocket money.", reply.Reply)

	status, body = doJSON(t, app, http.MethodPost, "/chat", `{"message":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "message is required", body.Error)

	long := `{"message":"` + strings.Repeat("a", maxChatMessageLength+1) + `"}`
	status, body = doJSON(t, app, http.MethodPost, "/chat", long)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "message is too long", body.Error)
}

func TestChatNotConfigured(t *testing.T) {
	h := testHandler()
	h.assistant = services.NewAssistantService(nil, "OpenAI service is not configured.")

	app := newTestApp(7, models.RoleUser)
	app.Post("/chat", h.Chat)

	status, body := doJSON(t, app, http.MethodPost, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, status)

	var reply models.ChatResponse
	dataAs(t, body, &reply)
	assert.Equal(t, "OpenAI service is not configured.", reply.Reply)
}
