package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var ErrRecurringNotFound = errors.New("recurring expense not found")

const recurringColumns = `id, user_id, amount, category, frequency, next_due_date, created_at`

func scanRecurring(row pgx.Row) (*models.RecurringExpense, error) {
	r := &models.RecurringExpense{}
	err := row.Scan(&r.ID, &r.UserID, &r.Amount, &r.Category, &r.Frequency, &r.NextDueDate, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecurringNotFound
		}
		return nil, err
	}
	return r, nil
}

// CreateRecurringExpense inserts a recurring expense for userID
func (db *DB) CreateRecurringExpense(ctx context.Context, userID int, req *models.RecurringExpenseRequest) (*models.RecurringExpense, error) {
	return scanRecurring(db.Pool.QueryRow(ctx, `
		INSERT INTO recurring_expenses (user_id, amount, category, frequency, next_due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+recurringColumns,
		userID, req.Amount, req.Category, req.Frequency, req.ParsedDate(),
	))
}

// ListRecurringExpenses returns the user's recurring expenses, soonest first
func (db *DB) ListRecurringExpenses(ctx context.Context, userID int) ([]*models.RecurringExpense, error) {
	return db.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_expenses WHERE user_id = $1 ORDER BY next_due_date ASC, id`,
		userID,
	)
}

// ListDueRecurringExpenses returns every recurring expense due at or before now
func (db *DB) ListDueRecurringExpenses(ctx context.Context, now time.Time) ([]*models.RecurringExpense, error) {
	return db.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_expenses WHERE next_due_date <= $1 ORDER BY id`,
		now,
	)
}

// DeleteRecurringExpense removes a recurring expense owned by userID.
// Expenses it already generated are kept.
func (db *DB) DeleteRecurringExpense(ctx context.Context, id, userID int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM recurring_expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

// ProcessRecurringExpense materializes every missed occurrence of one
// recurring expense and advances its due date, inside a single transaction.
// The row is locked and re-read so concurrent runs cannot double-insert.
func (db *DB) ProcessRecurringExpense(ctx context.Context, id int, now time.Time) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	r, err := scanRecurring(tx.QueryRow(ctx,
		`SELECT `+recurringColumns+` FROM recurring_expenses WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return 0, err
	}

	due, next := models.Occurrences(r.NextDueDate, r.Frequency, now)
	if len(due) == 0 {
		return 0, nil
	}

	for _, d := range due {
		_, err := tx.Exec(ctx, `
			INSERT INTO expenses (user_id, amount, category, date, recurring_id)
			VALUES ($1, $2, $3, $4, $5)
		`, r.UserID, r.Amount, r.Category, d, r.ID)
		if err != nil {
			return 0, fmt.Errorf("insert occurrence %s: %w", d.Format("2006-01-02"), err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE recurring_expenses SET next_due_date = $2 WHERE id = $1`, r.ID, next); err != nil {
		return 0, fmt.Errorf("advance due date: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(due), nil
}

func (db *DB) queryRecurring(ctx context.Context, query string, args ...interface{}) ([]*models.RecurringExpense, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.RecurringExpense{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
