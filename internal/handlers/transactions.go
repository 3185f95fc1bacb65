package handlers

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// transactionListParams builds the list filter from the query string
func transactionListParams(c *fiber.Ctx, userID int) (*models.TransactionListParams, error) {
	params := &models.TransactionListParams{UserID: userID}
	params.Limit, params.Offset = pagination(c)

	if raw := c.Query("category"); raw != "" {
		id := c.QueryInt("category", 0)
		if id <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "category must be a category id")
		}
		params.CategoryID = &id
	}

	if raw := c.Query("type"); raw != "" {
		t := models.EntryType(raw)
		if !t.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
		}
		params.Type = &t
	}

	var err error
	if params.StartDate, err = queryDate(c, "startDate", false); err != nil {
		return nil, err
	}
	if params.EndDate, err = queryDate(c, "endDate", true); err != nil {
		return nil, err
	}
	return params, nil
}

// ListTransactions returns a page of the caller's transactions
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	params, err := transactionListParams(c, middleware.GetUserID(c))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}

	transactions, total, err := h.db.ListTransactions(c.Context(), params)
	if err != nil {
		return internalError(c, "failed to list transactions", err)
	}
	return SuccessWithMeta(c, transactions, total, params.Limit, params.Offset)
}

// GetTransaction returns one transaction owned by the caller
func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	tx, err := h.db.GetTransaction(c.Context(), id, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, database.ErrTransactionNotFound) {
			return Error(c, fiber.StatusNotFound, "transaction not found")
		}
		return internalError(c, "failed to get transaction", err)
	}
	return Success(c, tx)
}

// CreateTransaction records an income or expense
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	tx, err := h.db.CreateTransaction(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		return internalError(c, "failed to create transaction", err)
	}
	return Created(c, tx)
}

// UpdateTransaction replaces a transaction owned by the caller
func (h *Handler) UpdateTransaction(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	tx, err := h.db.UpdateTransaction(c.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrTransactionNotFound):
			return Error(c, fiber.StatusNotFound, "transaction not found")
		case errors.Is(err, database.ErrCategoryNotFound):
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		return internalError(c, "failed to update transaction", err)
	}
	return Success(c, tx)
}

// DeleteTransaction removes a transaction owned by the caller
func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	if err := h.db.DeleteTransaction(c.Context(), id, middleware.GetUserID(c)); err != nil {
		if errors.Is(err, database.ErrTransactionNotFound) {
			return Error(c, fiber.StatusNotFound, "transaction not found")
		}
		return internalError(c, "failed to delete transaction", err)
	}
	return Success(c, fiber.Map{"message": "transaction deleted"})
}

// TransactionSummary returns the month's income, expense and category split
func (h *Handler) TransactionSummary(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	now := h.today()

	from, to, err := services.ParseMonth(c.Query("month"), now)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "month must be YYYY-MM")
	}

	income, expense, err := h.db.SumTransactionsByType(c.Context(), userID, from, to)
	if err != nil {
		return internalError(c, "failed to summarize transactions", err)
	}

	spend, err := h.db.ExpenseByCategory(c.Context(), userID, from, to)
	if err != nil {
		return internalError(c, "failed to summarize transactions", err)
	}

	return Success(c, buildSummary(from, to, now, income, expense, spend))
}

// buildSummary assembles the monthly summary. The daily average divides by
// the days elapsed when the month is still in progress.
func buildSummary(from, to, now time.Time, income, expense float64, spend []database.CategorySpend) *models.TransactionSummary {
	days := services.DaysInMonth(from)
	if !now.Before(from) && now.Before(to) {
		days = now.Day()
	}

	inc := decimal.NewFromFloat(income)
	exp := decimal.NewFromFloat(expense)
	avg := decimal.Zero
	if days > 0 {
		avg = exp.Div(decimal.NewFromInt(int64(days)))
	}

	byCategory := make([]models.CategoryTotal, 0, len(spend))
	for _, s := range spend {
		if s.Spent <= 0 {
			continue
		}
		byCategory = append(byCategory, models.CategoryTotal{Category: s.Name, Amount: s.Spent})
	}
	sort.SliceStable(byCategory, func(i, j int) bool {
		return byCategory[i].Amount > byCategory[j].Amount
	})

	net, _ := inc.Sub(exp).Round(2).Float64()
	daily, _ := avg.Round(2).Float64()
	return &models.TransactionSummary{
		Month:        from.Format("2006-01"),
		Income:       income,
		Expense:      expense,
		Net:          net,
		DailyAverage: daily,
		ByCategory:   byCategory,
	}
}
