package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// AddExpense records a free-text-category expense
func (h *Handler) AddExpense(c *fiber.Ctx) error {
	var req models.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	expense, err := h.db.CreateExpense(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return internalError(c, "failed to add expense", err)
	}
	return Created(c, expense)
}

// ListExpenses returns the caller's expenses, newest first
func (h *Handler) ListExpenses(c *fiber.Ctx) error {
	filter := &models.ExpenseFilter{UserID: middleware.GetUserID(c)}

	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	var err error
	if filter.StartDate, err = queryDate(c, "startDate", false); err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}
	if filter.EndDate, err = queryDate(c, "endDate", true); err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}

	expenses, err := h.db.ListExpenses(c.Context(), filter)
	if err != nil {
		return internalError(c, "failed to list expenses", err)
	}
	return Success(c, expenses)
}

// ExpenseInsights compares this month's food spend with last month's
func (h *Handler) ExpenseInsights(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	now := h.today()

	monthStart, _ := services.MonthRange(now)
	lastFrom, lastTo := services.PreviousMonthRange(now)

	thisMonth, err := h.db.SumExpensesByCategory(c.Context(), userID, services.InsightCategory, monthStart, now)
	if err != nil {
		return internalError(c, "failed to compute insights", err)
	}
	lastMonth, err := h.db.SumExpensesByCategory(c.Context(), userID, services.InsightCategory, lastFrom, lastTo)
	if err != nil {
		return internalError(c, "failed to compute insights", err)
	}

	return Success(c, services.ComputeInsights(now, thisMonth, lastMonth))
}
