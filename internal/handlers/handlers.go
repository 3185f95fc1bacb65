package handlers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// Handler holds all handler dependencies
type Handler struct {
	db        Store
	cfg       *config.Config
	assistant *services.AssistantService
	notifier  *services.Notifier
	bills     services.BillStore
	jobs      JobRunner
	now       func() time.Time
}

// New creates a new Handler instance. bills may be nil when the bill
// archive is disabled.
func New(db Store, cfg *config.Config, assistant *services.AssistantService, notifier *services.Notifier, bills services.BillStore) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		assistant: assistant,
		notifier:  notifier,
		bills:     bills,
		now:       time.Now,
	}
}

// today returns now in the configured time zone
func (h *Handler) today() time.Time {
	return h.now().In(h.cfg.Location())
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
	}

	return c.Status(code).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata
type Meta struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages,omitempty"`
	CurrentPage int `json:"current_page,omitempty"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Created returns a successful response with status 201
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta returns a successful response with pagination
func SuccessWithMeta(c *fiber.Ctx, data interface{}, total, limit, offset int) error {
	meta := &Meta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
		meta.CurrentPage = offset/limit + 1
	}
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// internalError logs err with the request path and returns a 500 with message
func internalError(c *fiber.Ctx, message string, err error) error {
	log.WithFields(log.Fields{
		"path":   c.Path(),
		"method": c.Method(),
	}).WithError(err).Error(message)
	return Error(c, fiber.StatusInternalServerError, message)
}

// paramID parses the :id route parameter
func paramID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination reads page/limit query parameters, defaulting to page 1 of 10
// and capping limit at 100. page is capped so the offset fits in an int4.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return limit, (page - 1) * limit
}

// queryDate parses an optional YYYY-MM-DD or RFC3339 query parameter. When
// endOfDay is set a bare date is moved to the last microsecond of that day.
func queryDate(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			d = d.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return &d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be a valid date")
	}
	return &d, nil
}

// HealthCheck reports that the server is up
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"message": "Server is running",
	})
}
