package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// reportPeriod reads ?month=YYYY-MM; without it the report covers the
// previous calendar month, like the scheduled run
func (h *Handler) reportPeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := h.today()
	if c.Query("month") == "" {
		from, to := services.PreviousMonthRange(now)
		return from, to, nil
	}
	return services.ParseMonth(c.Query("month"), now)
}

// MonthlyReport returns the caller's spend report as JSON
func (h *Handler) MonthlyReport(c *fiber.Ctx) error {
	from, to, err := h.reportPeriod(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "month must be YYYY-MM")
	}

	report, err := h.notifier.BuildReport(c.Context(), middleware.GetUserID(c), services.MonthlyReportSubject, from, to)
	if err != nil {
		return internalError(c, "failed to build report", err)
	}
	return Success(c, report)
}

// SendMonthlyReport delivers the caller's report to their parental contacts now
func (h *Handler) SendMonthlyReport(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	from, to, err := h.reportPeriod(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "month must be YYYY-MM")
	}

	user, err := h.db.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to get user", err)
	}

	if !user.HasParentalContact() {
		return Error(c, fiber.StatusBadRequest, "no parental contact configured")
	}

	report, err := h.notifier.BuildReport(c.Context(), userID, services.MonthlyReportSubject, from, to)
	if err != nil {
		return internalError(c, "failed to build report", err)
	}

	delivery, err := h.notifier.SendMonthlyReport(c.Context(), user, report)
	if err != nil && !delivery.Sent() {
		return c.Status(fiber.StatusBadGateway).JSON(APIResponse{
			Success: false,
			Data:    delivery,
			Error:   "failed to deliver report",
		})
	}
	return Success(c, delivery)
}
