package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var ErrPreferenceNotFound = errors.New("preference not found")

// GetPreferences returns every known preference for the user, with stored
// values layered over the defaults
func (db *DB) GetPreferences(ctx context.Context, userID int) (map[string]string, error) {
	prefs := make(map[string]string, len(models.PreferenceDefaults))
	for k, v := range models.PreferenceDefaults {
		prefs[k] = v
	}

	rows, err := db.Pool.Query(ctx, `SELECT key, value FROM user_preferences WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		if _, known := models.PreferenceDefaults[key]; known {
			prefs[key] = value
		}
	}
	return prefs, rows.Err()
}

// GetPreference retrieves one stored preference value
func (db *DB) GetPreference(ctx context.Context, userID int, key string) (string, error) {
	var value string
	err := db.Pool.QueryRow(ctx,
		`SELECT value FROM user_preferences WHERE user_id = $1 AND key = $2`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPreferenceNotFound
		}
		return "", fmt.Errorf("failed to get preference: %w", err)
	}
	return value, nil
}

// GetPreferenceString retrieves a preference, falling back to defaultValue
func (db *DB) GetPreferenceString(ctx context.Context, userID int, key, defaultValue string) string {
	value, err := db.GetPreference(ctx, userID, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

// GetPreferenceBool retrieves a preference as a boolean
func (db *DB) GetPreferenceBool(ctx context.Context, userID int, key string, defaultValue bool) bool {
	value, err := db.GetPreference(ctx, userID, key)
	if err != nil {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// SetPreferences upserts the given preferences in one transaction
func (db *DB) SetPreferences(ctx context.Context, userID int, values map[string]string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_preferences (user_id, key, value, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, userID, key, value)
		if err != nil {
			return fmt.Errorf("failed to set preference %s: %w", key, err)
		}
	}

	return tx.Commit(ctx)
}
