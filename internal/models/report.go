package models

import "time"

// SpendEntry is one expense line feeding a report
type SpendEntry struct {
	Category string
	Amount   float64
	Date     time.Time
}

// SpendReport is the aggregated spend for a period
type SpendReport struct {
	UserID     int             `json:"user_id"`
	Title      string          `json:"title"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Total      float64         `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// ChatRequest is the request body for the assistant
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Preference keys accepted by the preferences endpoint
const (
	PrefBudgetAlerts     = "budget_alerts"
	PrefExpenseReminders = "expense_reminders"
	PrefWeeklyReports    = "weekly_reports"
	PrefCurrency         = "currency"
	PrefDateFormat       = "date_format"
	PrefLanguage         = "language"
)

// PreferenceDefaults lists every known preference with its default value
var PreferenceDefaults = map[string]string{
	PrefBudgetAlerts:     "true",
	PrefExpenseReminders: "true",
	PrefWeeklyReports:    "false",
	PrefCurrency:         "INR",
	PrefDateFormat:       "DD/MM/YYYY",
	PrefLanguage:         "en",
}

// BoolPreferences are stored as "true"/"false"
var BoolPreferences = map[string]bool{
	PrefBudgetAlerts:     true,
	PrefExpenseReminders: true,
	PrefWeeklyReports:    true,
}
