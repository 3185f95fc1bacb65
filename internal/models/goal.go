package models

import (
	"strings"
	"time"
)

// Goal is a savings target
type Goal struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	Name      string     `json:"name"`
	Target    float64    `json:"target"`
	Saved     float64    `json:"saved"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Progress  float64    `json:"progress"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ComputeProgress sets Progress to saved/target as a percentage capped at 100
func (g *Goal) ComputeProgress() {
	if g.Target <= 0 {
		g.Progress = 0
		return
	}
	p := g.Saved / g.Target * 100
	if p > 100 {
		p = 100
	}
	g.Progress = float64(int(p*100+0.5)) / 100
}

// GoalRequest is the request body for creating or updating a goal
type GoalRequest struct {
	Name     string   `json:"name"`
	Target   float64  `json:"target"`
	Saved    *float64 `json:"saved,omitempty"`
	Deadline *string  `json:"deadline,omitempty"`

	parsedDeadline *time.Time
}

// Validate checks the request and caches the parsed deadline
func (r *GoalRequest) Validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "goal name is required"
	}
	if r.Target <= 0 {
		return "target must be greater than 0"
	}
	if r.Saved != nil && *r.Saved < 0 {
		return "saved must not be negative"
	}
	if r.Deadline != nil && *r.Deadline != "" {
		d, err := ParseISODate(*r.Deadline)
		if err != nil {
			return "deadline must be a valid date"
		}
		r.parsedDeadline = &d
	}
	return ""
}

// ParsedDeadline returns the deadline parsed by Validate
func (r *GoalRequest) ParsedDeadline() *time.Time {
	return r.parsedDeadline
}

// SavedOrZero returns the initial saved amount
func (r *GoalRequest) SavedOrZero() float64 {
	if r.Saved == nil {
		return 0
	}
	return *r.Saved
}

// ContributeRequest adds money to a goal
type ContributeRequest struct {
	Amount float64 `json:"amount"`
}

// BudgetStatus compares the monthly budget with this month's spend
type BudgetStatus struct {
	Month         string           `json:"month"`
	MonthlyBudget float64          `json:"monthly_budget"`
	Spent         float64          `json:"spent"`
	Remaining     float64          `json:"remaining"`
	UsagePercent  float64          `json:"usage_percent"`
	Categories    []CategoryBudget `json:"categories"`
}

// CategoryBudget is budget vs actual for one category
type CategoryBudget struct {
	CategoryID   int     `json:"category_id"`
	Name         string  `json:"name"`
	Budget       float64 `json:"budget"`
	Spent        float64 `json:"spent"`
	UsagePercent float64 `json:"usage_percent"`
	OverBudget   bool    `json:"over_budget"`
}
