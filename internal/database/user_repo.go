package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, full_name, email, password_hash, role, age, gender, phone, monthly_budget,
	parent_email, parent_phone, parent_telegram_chat_id, created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Age,
		&user.Gender,
		&user.Phone,
		&user.MonthlyBudget,
		&user.ParentEmail,
		&user.ParentPhone,
		&user.ParentTelegramChatID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser creates a new user in the database
func (db *DB) CreateUser(ctx context.Context, fullName, email, passwordHash string) (*models.User, error) {
	user, err := scanUser(db.Pool.QueryRow(ctx, `
		INSERT INTO users (full_name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, 'user', NOW(), NOW())
		RETURNING `+userColumns,
		fullName, strings.ToLower(email), passwordHash,
	))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by their email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(email),
	))
}

// UpdateUser updates the profile fields that are set in req
func (db *DB) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx, `
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			age = COALESCE($3, age),
			gender = COALESCE($4, gender),
			phone = COALESCE($5, phone),
			monthly_budget = COALESCE($6, monthly_budget),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.FullName, req.Age, req.Gender, req.Phone, req.MonthlyBudget,
	))
}

// UpdateParentalContact changes only the provided fields. An empty string
// (or a zero chat ID) clears the stored value.
func (db *DB) UpdateParentalContact(ctx context.Context, id int, req *models.ParentalContactRequest) (*models.User, error) {
	var sets []string
	var args []interface{}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.ParentEmail != nil {
		addSet("parent_email", nullableString(*req.ParentEmail))
	}
	if req.ParentPhone != nil {
		addSet("parent_phone", nullableString(*req.ParentPhone))
	}
	if req.ParentTelegramChatID != nil {
		var chatID *int64
		if *req.ParentTelegramChatID != 0 {
			chatID = req.ParentTelegramChatID
		}
		addSet("parent_telegram_chat_id", chatID)
	}

	if len(sets) == 0 {
		return db.GetUserByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), userColumns)
	return scanUser(db.Pool.QueryRow(ctx, query, append([]interface{}{id}, args...)...))
}

// UpdateUserLastLogin updates the last login timestamp
func (db *DB) UpdateUserLastLogin(ctx context.Context, id int) error {
	_, err := db.Pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// DeleteUser removes a user; owned rows go with it through ON DELETE CASCADE
func (db *DB) DeleteUser(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsersWithParentalContact returns users that have at least one
// parental delivery channel configured
func (db *DB) ListUsersWithParentalContact(ctx context.Context) ([]*models.User, error) {
	return db.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE COALESCE(parent_email, '') <> ''
		   OR COALESCE(parent_phone, '') <> ''
		   OR parent_telegram_chat_id IS NOT NULL
		ORDER BY id
	`)
}

// ListUsersWithPreference returns users whose preference equals value.
// Users without a stored row fall back to the preference default.
func (db *DB) ListUsersWithPreference(ctx context.Context, key, value string) ([]*models.User, error) {
	return db.queryUsers(ctx, `
		SELECT `+prefixColumns("u", userColumns)+`
		FROM users u
		LEFT JOIN user_preferences p ON p.user_id = u.id AND p.key = $1
		WHERE COALESCE(p.value, $3) = $2
		ORDER BY u.id
	`, key, value, models.PreferenceDefaults[key])
}

// CountUsers returns the number of registered users
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// ListUsers returns a page of users, newest first, and the total count
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	total, err := db.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := db.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, total, nil
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// prefixColumns qualifies a comma-separated column list with a table alias
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func nullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
