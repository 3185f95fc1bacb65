package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

const expenseColumns = `id, user_id, amount, category, date, recurring_id, created_at`

// CreateExpense inserts a free-text-category expense
func (db *DB) CreateExpense(ctx context.Context, userID int, req *models.ExpenseRequest) (*models.Expense, error) {
	e := &models.Expense{}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, category, date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+expenseColumns,
		userID, req.Amount, req.Category, req.ParsedDate(),
	).Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.RecurringID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns the user's expenses matching the filter, newest first.
// Category matching is case-insensitive.
func (db *DB) ListExpenses(ctx context.Context, filter *models.ExpenseFilter) ([]*models.Expense, error) {
	whereClauses := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	argIndex := 2

	if filter.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(category) = LOWER($%d)", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.StartDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}

	if filter.EndDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d", argIndex))
		args = append(args, *filter.EndDate)
	}

	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY date DESC, id DESC`,
		expenseColumns, strings.Join(whereClauses, " AND "))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.RecurringID, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// SumExpensesByCategory totals expenses in a category over [from, to).
// Both free-text expenses and expense transactions under a category of
// that name count.
func (db *DB) SumExpensesByCategory(ctx context.Context, userID int, category string, from, to time.Time) (float64, error) {
	var total float64
	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM (
			SELECT e.amount FROM expenses e
			WHERE e.user_id = $1 AND LOWER(e.category) = LOWER($2) AND e.date >= $3 AND e.date < $4
			UNION ALL
			SELECT t.amount FROM transactions t
			JOIN categories c ON c.id = t.category_id
			WHERE t.user_id = $1 AND t.type = 'expense' AND LOWER(c.name) = LOWER($2)
			  AND t.date >= $3 AND t.date < $4
		) s
	`, userID, category, from, to).Scan(&total)
	return total, err
}
