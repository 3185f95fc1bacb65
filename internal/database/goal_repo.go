package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var ErrGoalNotFound = errors.New("goal not found")

const goalColumns = `id, user_id, name, target, saved, deadline, created_at, updated_at`

func scanGoal(row pgx.Row) (*models.Goal, error) {
	g := &models.Goal{}
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.Saved, &g.Deadline, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	g.ComputeProgress()
	return g, nil
}

// ListGoals returns the user's goals, oldest first
func (db *DB) ListGoals(ctx context.Context, userID int) ([]*models.Goal, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []*models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// CreateGoal inserts a goal for userID
func (db *DB) CreateGoal(ctx context.Context, userID int, req *models.GoalRequest) (*models.Goal, error) {
	return scanGoal(db.Pool.QueryRow(ctx, `
		INSERT INTO goals (user_id, name, target, saved, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		userID, req.Name, req.Target, req.SavedOrZero(), req.ParsedDeadline(),
	))
}

// UpdateGoal replaces name, target and deadline; saved changes only when provided
func (db *DB) UpdateGoal(ctx context.Context, id, userID int, req *models.GoalRequest) (*models.Goal, error) {
	return scanGoal(db.Pool.QueryRow(ctx, `
		UPDATE goals SET
			name = $3,
			target = $4,
			saved = COALESCE($5, saved),
			deadline = $6,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+goalColumns,
		id, userID, req.Name, req.Target, req.Saved, req.ParsedDeadline(),
	))
}

// ContributeToGoal adds amount to a goal's saved total
func (db *DB) ContributeToGoal(ctx context.Context, id, userID int, amount float64) (*models.Goal, error) {
	return scanGoal(db.Pool.QueryRow(ctx, `
		UPDATE goals SET saved = saved + $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+goalColumns,
		id, userID, amount,
	))
}

// DeleteGoal removes a goal owned by userID
func (db *DB) DeleteGoal(ctx context.Context, id, userID int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}
