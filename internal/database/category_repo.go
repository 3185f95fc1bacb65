package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category has transactions")
)

const categoryColumns = `id, user_id, name, type, budget, color, icon, created_at, updated_at`

func scanCategory(row pgx.Row, withSpent bool) (*models.Category, error) {
	cat := &models.Category{}
	dest := []interface{}{
		&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.Budget,
		&cat.Color, &cat.Icon, &cat.CreatedAt, &cat.UpdatedAt,
	}
	if withSpent {
		dest = append(dest, &cat.Spent)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return cat, nil
}

// ListCategories returns the user's categories, newest first, each with the
// expense total recorded against it in [from, to).
func (db *DB) ListCategories(ctx context.Context, userID int, from, to time.Time) ([]*models.Category, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c.id, c.user_id, c.name, c.type, c.budget, c.color, c.icon, c.created_at, c.updated_at,
			COALESCE((
				SELECT SUM(t.amount) FROM transactions t
				WHERE t.category_id = c.id AND t.user_id = c.user_id
				  AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
			), 0) AS spent
		FROM categories c
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows, true)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category owned by userID
func (db *DB) GetCategory(ctx context.Context, id, userID int) (*models.Category, error) {
	return scanCategory(db.Pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	), false)
}

// CreateCategory inserts a category for userID
func (db *DB) CreateCategory(ctx context.Context, userID int, req *models.CategoryRequest) (*models.Category, error) {
	budget := 0.0
	if req.Budget != nil {
		budget = *req.Budget
	}

	cat, err := scanCategory(db.Pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, type, budget, color, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		userID, req.Name, req.Type, budget, req.Color, req.Icon,
	), false)
	if err != nil {
		if isUniqueViolation(err, "categories_user_name_key") {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return cat, nil
}

// UpdateCategory replaces name and type and updates the optional fields that are set
func (db *DB) UpdateCategory(ctx context.Context, id, userID int, req *models.CategoryRequest) (*models.Category, error) {
	cat, err := scanCategory(db.Pool.QueryRow(ctx, `
		UPDATE categories SET
			name = $3,
			type = $4,
			budget = COALESCE($5, budget),
			color = COALESCE($6, color),
			icon = COALESCE($7, icon),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		id, userID, req.Name, req.Type, req.Budget, req.Color, req.Icon,
	), false)
	if err != nil {
		if isUniqueViolation(err, "categories_user_name_key") {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category that no transaction references
func (db *DB) DeleteCategory(ctx context.Context, id, userID int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateDefaultCategories inserts the named categories, skipping names the
// user already has. It returns how many were created.
func (db *DB) CreateDefaultCategories(ctx context.Context, userID int, defaults []models.CategoryRequest) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, d := range defaults {
		result, err := tx.Exec(ctx, `
			INSERT INTO categories (user_id, name, type, color, icon)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, name) DO NOTHING
		`, userID, d.Name, d.Type, d.Color, d.Icon)
		if err != nil {
			return 0, err
		}
		created += int(result.RowsAffected())
	}

	return created, tx.Commit(ctx)
}
