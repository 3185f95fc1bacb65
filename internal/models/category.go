package models

import (
	"strings"
	"time"
)

// EntryType distinguishes money coming in from money going out
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Valid reports whether t is one of the known entry types
func (t EntryType) Valid() bool {
	return t == EntryIncome || t == EntryExpense
}

// Category groups transactions and carries an optional monthly budget
type Category struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Type      EntryType `json:"type"`
	Budget    float64   `json:"budget"`
	Color     *string   `json:"color,omitempty"`
	Icon      *string   `json:"icon,omitempty"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryRef is the populated category embedded in a transaction
type CategoryRef struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// CategoryRequest is the request body for creating or updating a category
type CategoryRequest struct {
	Name   string    `json:"name"`
	Type   EntryType `json:"type"`
	Budget *float64  `json:"budget,omitempty"`
	Color  *string   `json:"color,omitempty"`
	Icon   *string   `json:"icon,omitempty"`
}

// Normalize trims the name and fills defaults
func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Type == "" {
		r.Type = EntryExpense
	}
}

// Validate returns a user-facing message for the first invalid field
func (r *CategoryRequest) Validate() string {
	if r.Name == "" {
		return "category name is required"
	}
	if len(r.Name) > 100 {
		return "category name must be at most 100 characters"
	}
	if !r.Type.Valid() {
		return "type must be income or expense"
	}
	if r.Budget != nil && *r.Budget < 0 {
		return "budget must not be negative"
	}
	return ""
}

func strRef(s string) *string { return &s }

// DefaultCategories is the starter set the seeder creates for a user
var DefaultCategories = []CategoryRequest{
	{Name: "Food", Type: EntryExpense, Color: strRef("#f97316"), Icon: strRef("utensils")},
	{Name: "Travel", Type: EntryExpense, Color: strRef("#3b82f6"), Icon: strRef("bus")},
	{Name: "Health", Type: EntryExpense, Color: strRef("#ef4444"), Icon: strRef("heart-pulse")},
	{Name: "Shopping", Type: EntryExpense, Color: strRef("#a855f7"), Icon: strRef("shopping-bag")},
	{Name: "Utilities", Type: EntryExpense, Color: strRef("#eab308"), Icon: strRef("bolt")},
	{Name: "Education", Type: EntryExpense, Color: strRef("#14b8a6"), Icon: strRef("book")},
	{Name: "Entertainment", Type: EntryExpense, Color: strRef("#ec4899"), Icon: strRef("film")},
	{Name: "Salary", Type: EntryIncome, Color: strRef("#22c55e"), Icon: strRef("wallet")},
	{Name: "Pocket Money", Type: EntryIncome, Color: strRef("#84cc16"), Icon: strRef("coins")},
}
