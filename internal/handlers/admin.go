package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// JobRunner runs a background job on demand
type JobRunner interface {
	JobNames() []string
	RunJob(ctx context.Context, name string) error
}

// SetJobRunner attaches the scheduler for the admin job endpoints
func (h *Handler) SetJobRunner(jobs JobRunner) {
	h.jobs = jobs
}

// AdminListUsers returns a paginated list of all users
func (h *Handler) AdminListUsers(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	users, total, err := h.db.ListUsers(c.Context(), limit, offset)
	if err != nil {
		return internalError(c, "failed to list users", err)
	}
	return SuccessWithMeta(c, users, total, limit, offset)
}

// AdminGetUser returns a user by ID
func (h *Handler) AdminGetUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.db.GetUserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to get user", err)
	}
	return Success(c, user)
}

// AdminDeleteUser deletes a user account and its archived bill images (admin only)
func (h *Handler) AdminDeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	// Prevent self-deletion
	if id == middleware.GetUserID(c) {
		return Error(c, fiber.StatusBadRequest, "cannot delete your own account")
	}

	if err := h.deleteUserWithBills(c.Context(), id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to delete user", err)
	}
	return Success(c, fiber.Map{"message": "user deleted"})
}

// AdminGetStats returns instance-wide counts and this month's totals
func (h *Handler) AdminGetStats(c *fiber.Ctx) error {
	ctx := c.Context()

	users, err := h.db.CountUsers(ctx)
	if err != nil {
		return internalError(c, "failed to get stats", err)
	}
	scans, err := h.db.CountBillScans(ctx)
	if err != nil {
		return internalError(c, "failed to get stats", err)
	}
	from, to := services.MonthRange(h.today())
	totals, err := h.db.GetTransactionTotals(ctx, from, to)
	if err != nil {
		return internalError(c, "failed to get stats", err)
	}

	return Success(c, fiber.Map{
		"total_users":        users,
		"total_transactions": totals.Count,
		"total_bill_scans":   scans,
		"income_mtd":         totals.Income,
		"expense_mtd":        totals.Expense,
	})
}

// AdminListJobs returns the background jobs that can be run on demand
func (h *Handler) AdminListJobs(c *fiber.Ctx) error {
	if h.jobs == nil {
		return Error(c, fiber.StatusServiceUnavailable, "scheduler is not running")
	}
	return Success(c, h.jobs.JobNames())
}

// AdminRunJob runs a background job immediately
func (h *Handler) AdminRunJob(c *fiber.Ctx) error {
	if h.jobs == nil {
		return Error(c, fiber.StatusServiceUnavailable, "scheduler is not running")
	}

	name := c.Params("name")
	if err := h.jobs.RunJob(c.Context(), name); err != nil {
		if errors.Is(err, services.ErrUnknownJob) {
			return Error(c, fiber.StatusNotFound, "unknown job")
		}
		return internalError(c, "job failed", err)
	}
	return Success(c, fiber.Map{"job": name, "message": "job completed"})
}
