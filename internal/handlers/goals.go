package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// ListGoals returns the caller's savings goals
func (h *Handler) ListGoals(c *fiber.Ctx) error {
	goals, err := h.db.ListGoals(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, "failed to list goals", err)
	}
	return Success(c, goals)
}

// CreateGoal adds a savings goal
func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var req models.GoalRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	goal, err := h.db.CreateGoal(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return internalError(c, "failed to create goal", err)
	}
	return Created(c, goal)
}

// UpdateGoal changes a goal owned by the caller
func (h *Handler) UpdateGoal(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid goal id")
	}

	var req models.GoalRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	goal, err := h.db.UpdateGoal(c.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			return Error(c, fiber.StatusNotFound, "goal not found")
		}
		return internalError(c, "failed to update goal", err)
	}
	return Success(c, goal)
}

// ContributeToGoal adds money to a goal's saved amount
func (h *Handler) ContributeToGoal(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid goal id")
	}

	var req models.ContributeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Amount <= 0 {
		return Error(c, fiber.StatusBadRequest, "amount must be greater than 0")
	}

	goal, err := h.db.ContributeToGoal(c.Context(), id, middleware.GetUserID(c), req.Amount)
	if err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			return Error(c, fiber.StatusNotFound, "goal not found")
		}
		return internalError(c, "failed to update goal", err)
	}
	return Success(c, goal)
}

// DeleteGoal removes a goal owned by the caller
func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid goal id")
	}

	if err := h.db.DeleteGoal(c.Context(), id, middleware.GetUserID(c)); err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			return Error(c, fiber.StatusNotFound, "goal not found")
		}
		return internalError(c, "failed to delete goal", err)
	}
	return Success(c, fiber.Map{"message": "goal deleted"})
}

// BudgetStatus compares the monthly budget with this month's spend
func (h *Handler) BudgetStatus(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	now := h.today()
	from, to := services.MonthRange(now)

	user, err := h.db.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to get user", err)
	}

	_, spent, err := h.db.SumTransactionsByType(c.Context(), userID, from, to)
	if err != nil {
		return internalError(c, "failed to compute budget status", err)
	}

	spend, err := h.db.ExpenseByCategory(c.Context(), userID, from, to)
	if err != nil {
		return internalError(c, "failed to compute budget status", err)
	}

	return Success(c, buildBudgetStatus(from.Format("2006-01"), user.MonthlyBudget, spent, spend))
}

// usage returns spent/budget as a percentage rounded to 2 places, 0 without a budget
func usage(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	pct, _ := decimal.NewFromFloat(spent).
		Div(decimal.NewFromFloat(budget)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return pct
}

func buildBudgetStatus(month string, budget, spent float64, spend []database.CategorySpend) *models.BudgetStatus {
	remaining, _ := decimal.NewFromFloat(budget).Sub(decimal.NewFromFloat(spent)).Round(2).Float64()

	status := &models.BudgetStatus{
		Month:         month,
		MonthlyBudget: budget,
		Spent:         spent,
		Remaining:     remaining,
		UsagePercent:  usage(spent, budget),
		Categories:    make([]models.CategoryBudget, 0, len(spend)),
	}

	for _, s := range spend {
		status.Categories = append(status.Categories, models.CategoryBudget{
			CategoryID:   s.CategoryID,
			Name:         s.Name,
			Budget:       s.Budget,
			Spent:        s.Spent,
			UsagePercent: usage(s.Spent, s.Budget),
			OverBudget:   s.Budget > 0 && s.Spent > s.Budget,
		})
	}
	return status
}
