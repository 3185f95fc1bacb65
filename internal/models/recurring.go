package models

import (
	"strings"
	"time"
)

// Frequency is how often a recurring expense fires
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Advance returns t moved forward by one period. Month and year steps use
// normal calendar overflow (Jan 31 + 1 month = Mar 3 in non-leap years).
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// RecurringExpense generates an Expense each time NextDueDate passes
type RecurringExpense struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Frequency   Frequency `json:"frequency"`
	NextDueDate time.Time `json:"next_due_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecurringExpenseRequest is the request body for adding a recurring expense
type RecurringExpenseRequest struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Frequency   Frequency `json:"frequency"`
	NextDueDate string    `json:"nextDueDate"`

	parsedDate time.Time
}

// Validate checks the request and caches the parsed due date
func (r *RecurringExpenseRequest) Validate() string {
	r.Category = strings.TrimSpace(r.Category)
	if r.Amount <= 0 {
		return "amount must be greater than 0"
	}
	if r.Category == "" {
		return "category is required"
	}
	if !r.Frequency.Valid() {
		return "frequency must be daily, weekly, monthly or yearly"
	}
	d, err := ParseISODate(r.NextDueDate)
	if err != nil {
		return "valid nextDueDate is required"
	}
	r.parsedDate = d
	return ""
}

// ParsedDate returns the due date parsed by Validate
func (r *RecurringExpenseRequest) ParsedDate() time.Time {
	return r.parsedDate
}

// Occurrences returns the due dates that have passed as of now, starting at
// next, and the first due date after now.
func Occurrences(next time.Time, freq Frequency, now time.Time) ([]time.Time, time.Time) {
	var due []time.Time
	for !next.After(now) {
		due = append(due, next)
		advanced := freq.Advance(next)
		if !advanced.After(next) {
			break
		}
		next = advanced
	}
	return due, next
}
