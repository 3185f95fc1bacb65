package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

var ErrScanNotFound = errors.New("bill scan not found")

const billScanColumns = `id, user_id, s3_bucket, s3_key, original_filename, content_type, file_size_bytes,
	ocr_text, title, amount, bill_date, category, expires_at, created_at`

func scanBillScan(row pgx.Row) (*models.BillScan, error) {
	s := &models.BillScan{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.S3Bucket, &s.S3Key, &s.OriginalFilename, &s.ContentType, &s.FileSizeBytes,
		&s.OCRText, &s.Title, &s.Amount, &s.BillDate, &s.Category, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	return s, nil
}

// CreateBillScan records an archived bill image and what was read from it
func (db *DB) CreateBillScan(ctx context.Context, req *models.CreateBillScanRequest) (*models.BillScan, error) {
	return scanBillScan(db.Pool.QueryRow(ctx, `
		INSERT INTO bill_scans (user_id, s3_bucket, s3_key, original_filename, content_type, file_size_bytes,
			ocr_text, title, amount, bill_date, category, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+billScanColumns,
		req.UserID, req.S3Bucket, req.S3Key, req.OriginalFilename, req.ContentType, req.FileSizeBytes,
		req.OCRText, req.Parsed.Title, req.Parsed.Amount, req.Parsed.Date, req.Parsed.Category, req.ExpiresAt,
	))
}

// GetBillScan retrieves a scan by ID. Ownership is checked by the caller so
// that another user's scan can be reported as forbidden.
func (db *DB) GetBillScan(ctx context.Context, id int) (*models.BillScan, error) {
	return scanBillScan(db.Pool.QueryRow(ctx, `SELECT `+billScanColumns+` FROM bill_scans WHERE id = $1`, id))
}

// ListBillScans returns a page of the user's scans, newest first, and the total
func (db *DB) ListBillScans(ctx context.Context, userID, limit, offset int) ([]*models.BillScan, int, error) {
	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bill_scans WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+billScanColumns+` FROM bill_scans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	scans := []*models.BillScan{}
	for rows.Next() {
		s, err := scanBillScan(rows)
		if err != nil {
			return nil, 0, err
		}
		scans = append(scans, s)
	}
	return scans, total, rows.Err()
}

// DeleteBillScan removes a scan row
func (db *DB) DeleteBillScan(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM bill_scans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrScanNotFound
	}
	return nil
}

// ListBillScanKeys returns the object keys of every scan the user owns
func (db *DB) ListBillScanKeys(ctx context.Context, userID int) ([]string, error) {
	return db.queryKeys(ctx, `SELECT s3_key FROM bill_scans WHERE user_id = $1`, userID)
}

// CleanupExpiredScans deletes scans past their expiry and returns their object keys
func (db *DB) CleanupExpiredScans(ctx context.Context) ([]string, error) {
	return db.queryKeys(ctx, `DELETE FROM bill_scans WHERE expires_at < NOW() RETURNING s3_key`)
}

// CountBillScans returns the number of archived scans
func (db *DB) CountBillScans(ctx context.Context) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bill_scans`).Scan(&n)
	return n, err
}

func (db *DB) queryKeys(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
