package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.type, t.date, t.created_at, t.updated_at,
		c.id, c.name, c.color, c.icon
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{Category: &models.CategoryRef{}}
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.CategoryID, &tx.Amount, &tx.Description, &tx.Type, &tx.Date,
		&tx.CreatedAt, &tx.UpdatedAt,
		&tx.Category.ID, &tx.Category.Name, &tx.Category.Color, &tx.Category.Icon,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// ListTransactions returns a filtered page of the user's transactions and the total count
func (db *DB) ListTransactions(ctx context.Context, params *models.TransactionListParams) ([]*models.Transaction, int, error) {
	whereClauses := []string{"t.user_id = $1"}
	args := []interface{}{params.UserID}
	argIndex := 2

	if params.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("t.category_id = $%d", argIndex))
		args = append(args, *params.CategoryID)
		argIndex++
	}

	if params.Type != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("t.type = $%d", argIndex))
		args = append(args, *params.Type)
		argIndex++
	}

	if params.StartDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("t.date >= $%d", argIndex))
		args = append(args, *params.StartDate)
		argIndex++
	}

	if params.EndDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("t.date <= $%d", argIndex))
		args = append(args, *params.EndDate)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions t %s`, whereClause)
	if err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`%s
		%s
		ORDER BY t.date DESC, t.id DESC
		LIMIT $%d OFFSET $%d
	`, transactionSelect, whereClause, argIndex, argIndex+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, total, rows.Err()
}

// GetTransaction retrieves a transaction owned by userID
func (db *DB) GetTransaction(ctx context.Context, id, userID int) (*models.Transaction, error) {
	return scanTransaction(db.Pool.QueryRow(ctx,
		transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`,
		id, userID,
	))
}

// CreateTransaction inserts a transaction. The category must belong to the user.
func (db *DB) CreateTransaction(ctx context.Context, userID int, req *models.TransactionRequest) (*models.Transaction, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, category_id, amount, description, type, date)
		SELECT c.user_id, c.id, $3::numeric, $4::text, $5::varchar, $6::timestamptz
		FROM categories c
		WHERE c.id = $2 AND c.user_id = $1
		RETURNING id
	`, userID, req.CategoryID, req.Amount, req.Description, req.Type, req.ParsedDate()).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return db.GetTransaction(ctx, id, userID)
}

// UpdateTransaction replaces every field of a transaction owned by userID
func (db *DB) UpdateTransaction(ctx context.Context, id, userID int, req *models.TransactionRequest) (*models.Transaction, error) {
	if _, err := db.GetCategory(ctx, req.CategoryID, userID); err != nil {
		return nil, err
	}

	result, err := db.Pool.Exec(ctx, `
		UPDATE transactions SET
			category_id = $3,
			amount = $4,
			description = $5,
			type = $6,
			date = $7,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID, req.CategoryID, req.Amount, req.Description, req.Type, req.ParsedDate())
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrTransactionNotFound
	}
	return db.GetTransaction(ctx, id, userID)
}

// DeleteTransaction removes a transaction owned by userID
func (db *DB) DeleteTransaction(ctx context.Context, id, userID int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListAllTransactions returns every transaction of the user, newest first
func (db *DB) ListAllTransactions(ctx context.Context, userID int) ([]*models.Transaction, error) {
	rows, err := db.Pool.Query(ctx, transactionSelect+` WHERE t.user_id = $1 ORDER BY t.date DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// SumTransactionsByType returns income and expense totals in [from, to)
func (db *DB) SumTransactionsByType(ctx context.Context, userID int, from, to time.Time) (income, expense float64, err error) {
	err = db.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
	`, userID, from, to).Scan(&income, &expense)
	return income, expense, err
}

// CategorySpend is the expense total for one category in a period
type CategorySpend struct {
	CategoryID int
	Name       string
	Budget     float64
	Spent      float64
}

// ExpenseByCategory returns expense totals per category in [from, to),
// including expense categories with nothing spent.
func (db *DB) ExpenseByCategory(ctx context.Context, userID int, from, to time.Time) ([]CategorySpend, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c.id, c.name, c.budget,
			COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'expense' AND t.date >= $2 AND t.date < $3), 0) AS spent
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.user_id = $1 AND c.type = 'expense'
		GROUP BY c.id, c.name, c.budget
		ORDER BY spent DESC, c.name
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategorySpend
	for rows.Next() {
		var cs CategorySpend
		if err := rows.Scan(&cs.CategoryID, &cs.Name, &cs.Budget, &cs.Spent); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// SpendEntries returns every expense in [from, to) from both transactions
// (by category name) and free-text expenses, oldest first.
func (db *DB) SpendEntries(ctx context.Context, userID int, from, to time.Time) ([]models.SpendEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c.name, t.amount, t.date
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
		UNION ALL
		SELECT e.category, e.amount, e.date
		FROM expenses e
		WHERE e.user_id = $1 AND e.date >= $2 AND e.date < $3
		ORDER BY 3
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SpendEntry
	for rows.Next() {
		var e models.SpendEntry
		if err := rows.Scan(&e.Category, &e.Amount, &e.Date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TransactionTotals is the instance-wide snapshot used by the metrics collector
type TransactionTotals struct {
	Count      int
	Income     float64
	Expense    float64
	ByCategory map[string]float64
}

// GetTransactionTotals aggregates every user's transactions; income and
// expense sums and the category split cover [from, to) only.
func (db *DB) GetTransactionTotals(ctx context.Context, from, to time.Time) (*TransactionTotals, error) {
	totals := &TransactionTotals{ByCategory: map[string]float64{}}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE type = 'income' AND date >= $1 AND date < $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND date >= $1 AND date < $2), 0)
		FROM transactions
	`, from, to).Scan(&totals.Count, &totals.Income, &totals.Expense)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT c.name, SUM(t.amount)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = 'expense' AND t.date >= $1 AND t.date < $2
		GROUP BY c.name
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var amount float64
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, err
		}
		totals.ByCategory[name] += amount
	}
	return totals, rows.Err()
}
