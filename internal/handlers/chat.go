package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

const maxChatMessageLength = 2000

// Chat forwards a message to the expense planning assistant
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Error(c, fiber.StatusBadRequest, "message is required")
	}
	if len(message) > maxChatMessageLength {
		return Error(c, fiber.StatusBadRequest, "message is too long")
	}

	return Success(c, models.ChatResponse{
		Reply: h.assistant.Reply(c.Context(), message),
	})
}
