package handlers

import (
	"context"
	"time"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, fullName, email, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error)
	UpdateParentalContact(ctx context.Context, id int, req *models.ParentalContactRequest) (*models.User, error)
	UpdateUserLastLogin(ctx context.Context, id int) error
	DeleteUser(ctx context.Context, id int) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	CountUsers(ctx context.Context) (int, error)
}

// CategoryStore persists categories. ListCategories fills Spent over [from, to).
type CategoryStore interface {
	ListCategories(ctx context.Context, userID int, from, to time.Time) ([]*models.Category, error)
	CreateCategory(ctx context.Context, userID int, req *models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, userID int, req *models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id, userID int) error
}

// TransactionStore persists transactions and their monthly aggregates
type TransactionStore interface {
	ListTransactions(ctx context.Context, params *models.TransactionListParams) ([]*models.Transaction, int, error)
	ListAllTransactions(ctx context.Context, userID int) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, id, userID int) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, userID int, req *models.TransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID int, req *models.TransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int) error
	SumTransactionsByType(ctx context.Context, userID int, from, to time.Time) (income, expense float64, err error)
	ExpenseByCategory(ctx context.Context, userID int, from, to time.Time) ([]database.CategorySpend, error)
	GetTransactionTotals(ctx context.Context, from, to time.Time) (*database.TransactionTotals, error)
}

// ExpenseStore persists free-text-category expenses
type ExpenseStore interface {
	CreateExpense(ctx context.Context, userID int, req *models.ExpenseRequest) (*models.Expense, error)
	ListExpenses(ctx context.Context, filter *models.ExpenseFilter) ([]*models.Expense, error)
	SumExpensesByCategory(ctx context.Context, userID int, category string, from, to time.Time) (float64, error)
}

// RecurringStore persists recurring expense schedules
type RecurringStore interface {
	CreateRecurringExpense(ctx context.Context, userID int, req *models.RecurringExpenseRequest) (*models.RecurringExpense, error)
	ListRecurringExpenses(ctx context.Context, userID int) ([]*models.RecurringExpense, error)
	DeleteRecurringExpense(ctx context.Context, id, userID int) error
}

// GoalStore persists savings goals
type GoalStore interface {
	ListGoals(ctx context.Context, userID int) ([]*models.Goal, error)
	CreateGoal(ctx context.Context, userID int, req *models.GoalRequest) (*models.Goal, error)
	UpdateGoal(ctx context.Context, id, userID int, req *models.GoalRequest) (*models.Goal, error)
	ContributeToGoal(ctx context.Context, id, userID int, amount float64) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id, userID int) error
}

// PreferenceStore persists per-user settings
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID int) (map[string]string, error)
	SetPreferences(ctx context.Context, userID int, values map[string]string) error
}

// ArchiveStore lists archived bill scans
type ArchiveStore interface {
	ListBillScanKeys(ctx context.Context, userID int) ([]string, error)
	CountBillScans(ctx context.Context) (int, error)
}

// Store is everything the JSON handlers read and write
type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	ExpenseStore
	RecurringStore
	GoalStore
	PreferenceStore
	ArchiveStore
}

var _ Store = (*database.DB)(nil)
