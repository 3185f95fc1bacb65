package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/handlers"
	"github.com/foxxcyber/hisab-kitab/internal/metrics"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
)

func setupRoutes(app *fiber.App, cfg *config.Config, h *handlers.Handler, bh *handlers.BillHandler, collector *metrics.Collector) {
	auth := middleware.AuthRequired(cfg)

	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", collector.Handler())

	api := app.Group("/api")

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/signup", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/logout", h.Logout)
	authRoutes.Get("/me", auth, h.GetCurrentUser)
	authRoutes.Post("/refresh", auth, h.RefreshToken)

	// Legacy registration paths used by older clients
	api.Post("/users/register", h.Register)
	api.Post("/users/login", h.Login)

	users := api.Group("/users", auth)
	users.Get("/me", h.GetCurrentUser)
	users.Put("/me", h.UpdateProfile)
	users.Delete("/me", h.DeleteAccount)
	users.Get("/me/preferences", h.GetPreferences)
	users.Put("/me/preferences", h.UpdatePreferences)
	users.Get("/me/export", h.ExportAccount)
	users.Put("/parental-contact", h.UpdateParentalContact)

	categories := api.Group("/categories", auth)
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Put("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)

	transactions := api.Group("/transactions", auth)
	transactions.Get("/", h.ListTransactions)
	transactions.Get("/summary", h.TransactionSummary)
	transactions.Get("/:id", h.GetTransaction)
	transactions.Post("/", h.CreateTransaction)
	transactions.Put("/:id", h.UpdateTransaction)
	transactions.Delete("/:id", h.DeleteTransaction)

	expenses := api.Group("/expenses", auth)
	expenses.Get("/", h.ListExpenses)
	expenses.Post("/add-expense", h.AddExpense)
	expenses.Get("/insights", h.ExpenseInsights)

	recurring := api.Group("/recurring-expenses", auth)
	recurring.Get("/", h.ListRecurringExpenses)
	recurring.Post("/", h.AddRecurringExpense)
	recurring.Delete("/:id", h.DeleteRecurringExpense)

	goals := api.Group("/goals", auth)
	goals.Get("/", h.ListGoals)
	goals.Post("/", h.CreateGoal)
	goals.Put("/:id", h.UpdateGoal)
	goals.Delete("/:id", h.DeleteGoal)
	goals.Post("/:id/contribute", h.ContributeToGoal)

	api.Get("/budgets/status", auth, h.BudgetStatus)

	ocr := api.Group("/ocr", auth)
	ocr.Post("/process", bh.ProcessBill)
	ocr.Get("/scans", bh.ListScans)
	ocr.Get("/scans/:id", bh.GetScan)
	ocr.Delete("/scans/:id", bh.DeleteScan)
	api.Post("/upload-bill", auth, bh.ProcessBill)

	api.Post("/chat", auth, h.Chat)

	reports := api.Group("/reports", auth)
	reports.Get("/monthly", h.MonthlyReport)
	reports.Post("/monthly/send", h.SendMonthlyReport)

	admin := api.Group("/admin", auth, middleware.AdminRequired())
	admin.Get("/users", h.AdminListUsers)
	admin.Get("/users/:id", h.AdminGetUser)
	admin.Delete("/users/:id", h.AdminDeleteUser)
	admin.Get("/stats", h.AdminGetStats)
	admin.Get("/jobs", h.AdminListJobs)
	admin.Post("/jobs/:name/run", h.AdminRunJob)
}
