package models

import (
	"strings"
	"time"
)

// Expense is a free-text-category spend entry (legacy endpoint and
// recurring expense output)
type Expense struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	RecurringID *int      `json:"recurring_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseRequest is the request body for adding an expense
type ExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`

	parsedDate time.Time
}

// Validate checks the request and caches the parsed date
func (r *ExpenseRequest) Validate() string {
	r.Category = strings.TrimSpace(r.Category)
	if r.Amount <= 0 {
		return "amount must be greater than 0"
	}
	if r.Category == "" {
		return "category is required"
	}
	d, err := ParseISODate(r.Date)
	if err != nil {
		return "valid date is required"
	}
	r.parsedDate = d
	return ""
}

// ParsedDate returns the date parsed by Validate
func (r *ExpenseRequest) ParsedDate() time.Time {
	return r.parsedDate
}

// ExpenseFilter holds filters for listing expenses
type ExpenseFilter struct {
	UserID    int
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Insights is the response for the spending insight endpoint
type Insights struct {
	Insights         []string `json:"insights"`
	PercentageChange float64  `json:"percentage_change"`
	ThisMonthFood    float64  `json:"this_month_food"`
	LastMonthFood    float64  `json:"last_month_food"`
	PotentialSaving  float64  `json:"potential_saving"`
}
