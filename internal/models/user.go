package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                   int        `json:"id"`
	FullName             string     `json:"full_name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"` // Never expose in JSON
	Role                 Role       `json:"role"`
	Age                  *int       `json:"age,omitempty"`
	Gender               *string    `json:"gender,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	MonthlyBudget        float64    `json:"monthly_budget"`
	ParentEmail          *string    `json:"parent_email,omitempty"`
	ParentPhone          *string    `json:"parent_phone,omitempty"`
	ParentTelegramChatID *int64     `json:"parent_telegram_chat_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin checks if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasParentalContact reports whether a monthly report has somewhere to go.
func (u *User) HasParentalContact() bool {
	return (u.ParentEmail != nil && *u.ParentEmail != "") ||
		(u.ParentPhone != nil && *u.ParentPhone != "") ||
		u.ParentTelegramChatID != nil
}

// RegisterRequest is the request body for user registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateUserRequest is the request body for updating a user profile
type UpdateUserRequest struct {
	FullName      *string  `json:"full_name,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	MonthlyBudget *float64 `json:"monthly_budget,omitempty"`
}

// ParentalContactRequest updates where monthly reports are delivered.
// A nil field is left untouched; an empty string clears it.
type ParentalContactRequest struct {
	ParentEmail          *string `json:"parentEmail,omitempty"`
	ParentPhone          *string `json:"parentPhone,omitempty"`
	ParentTelegramChatID *int64  `json:"parentTelegramChatId,omitempty"`
}

// ParentalContact is the response body after updating parental contact
type ParentalContact struct {
	ParentEmail          *string `json:"parentEmail,omitempty"`
	ParentPhone          *string `json:"parentPhone,omitempty"`
	ParentTelegramChatID *int64  `json:"parentTelegramChatId,omitempty"`
}

// AccountExport is the full data export for a user
type AccountExport struct {
	User              *User               `json:"user"`
	Preferences       map[string]string   `json:"preferences"`
	Categories        []*Category         `json:"categories"`
	Transactions      []*Transaction      `json:"transactions"`
	Expenses          []*Expense          `json:"expenses"`
	RecurringExpenses []*RecurringExpense `json:"recurring_expenses"`
	Goals             []*Goal             `json:"goals"`
	ExportedAt        time.Time           `json:"exported_at"`
}
