package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// ListCategories returns the caller's categories with this month's spend
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	from, to := services.MonthRange(h.today())

	categories, err := h.db.ListCategories(c.Context(), middleware.GetUserID(c), from, to)
	if err != nil {
		return internalError(c, "failed to list categories", err)
	}
	return Success(c, categories)
}

// CreateCategory adds a category
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req models.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Normalize()
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	category, err := h.db.CreateCategory(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, database.ErrCategoryExists) {
			return Error(c, fiber.StatusConflict, "category already exists")
		}
		return internalError(c, "failed to create category", err)
	}
	return Created(c, category)
}

// UpdateCategory changes a category owned by the caller
func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	var req models.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Normalize()
	if msg := req.Validate(); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	category, err := h.db.UpdateCategory(c.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			return Error(c, fiber.StatusNotFound, "category not found")
		case errors.Is(err, database.ErrCategoryExists):
			return Error(c, fiber.StatusConflict, "category already exists")
		}
		return internalError(c, "failed to update category", err)
	}
	return Success(c, category)
}

// DeleteCategory removes a category that has no transactions
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.db.DeleteCategory(c.Context(), id, middleware.GetUserID(c)); err != nil {
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			return Error(c, fiber.StatusNotFound, "category not found")
		case errors.Is(err, database.ErrCategoryInUse):
			return Error(c, fiber.StatusConflict, "category has transactions")
		}
		return internalError(c, "failed to delete category", err)
	}
	return Success(c, fiber.Map{"message": "category deleted"})
}
