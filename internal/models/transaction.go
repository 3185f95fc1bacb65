package models

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseISODate accepts YYYY-MM-DD or a full RFC3339 timestamp
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// Transaction is an income or expense entry tied to a category
type Transaction struct {
	ID          int          `json:"id"`
	UserID      int          `json:"user_id"`
	CategoryID  int          `json:"category_id"`
	Category    *CategoryRef `json:"category,omitempty"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Type        EntryType    `json:"type"`
	Date        time.Time    `json:"date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TransactionRequest is the request body for creating or updating a transaction
type TransactionRequest struct {
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CategoryID  int       `json:"category_id"`
	Type        EntryType `json:"type"`
	Date        string    `json:"date"`

	parsedDate time.Time
}

// Validate checks the request and caches the parsed date
func (r *TransactionRequest) Validate() string {
	r.Description = strings.TrimSpace(r.Description)
	if r.Amount <= 0 {
		return "amount must be greater than 0"
	}
	if r.Description == "" {
		return "description is required"
	}
	if r.CategoryID <= 0 {
		return "valid category ID is required"
	}
	if !r.Type.Valid() {
		return "type must be income or expense"
	}
	d, err := ParseISODate(r.Date)
	if err != nil {
		return "valid date is required"
	}
	r.parsedDate = d
	return ""
}

// ParsedDate returns the date parsed by Validate
func (r *TransactionRequest) ParsedDate() time.Time {
	return r.parsedDate
}

// TransactionListParams holds filters for listing transactions
type TransactionListParams struct {
	UserID     int
	CategoryID *int
	Type       *EntryType
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// TransactionSummary is the monthly income/expense overview
type TransactionSummary struct {
	Month        string          `json:"month"`
	Income       float64         `json:"income"`
	Expense      float64         `json:"expense"`
	Net          float64         `json:"net"`
	DailyAverage float64         `json:"daily_average"`
	ByCategory   []CategoryTotal `json:"by_category"`
}

// CategoryTotal is the amount spent under one category name
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}
