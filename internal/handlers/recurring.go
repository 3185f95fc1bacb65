package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// AddRecurringExpense schedules a recurring expense
func (h *Handler) AddRecurringExpense(c *fiber.Ctx) error {
	var req models.RecurringExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	recurring, err := h.db.CreateRecurringExpense(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return internalError(c, "failed to add recurring expense", err)
	}
	return Created(c, recurring)
}

// ListRecurringExpenses returns the caller's recurring expenses, soonest first
func (h *Handler) ListRecurringExpenses(c *fiber.Ctx) error {
	list, err := h.db.ListRecurringExpenses(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, "failed to list recurring expenses", err)
	}
	return Success(c, list)
}

// DeleteRecurringExpense stops a recurring expense
func (h *Handler) DeleteRecurringExpense(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid recurring expense id")
	}

	if err := h.db.DeleteRecurringExpense(c.Context(), id, middleware.GetUserID(c)); err != nil {
		if errors.Is(err, database.ErrRecurringNotFound) {
			return Error(c, fiber.StatusNotFound, "recurring expense not found")
		}
		return internalError(c, "failed to delete recurring expense", err)
	}
	return Success(c, fiber.Map{"message": "recurring expense deleted"})
}
