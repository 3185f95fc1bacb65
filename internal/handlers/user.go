package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// normalizePhone strips the spaces and dashes people type into phone numbers
func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

// UpdateProfile updates the caller's profile fields
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return Error(c, fiber.StatusBadRequest, "full name must not be empty")
		}
		req.FullName = &name
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		return Error(c, fiber.StatusBadRequest, "age must be between 0 and 150")
	}
	if req.MonthlyBudget != nil && *req.MonthlyBudget < 0 {
		return Error(c, fiber.StatusBadRequest, "monthly budget must not be negative")
	}
	if req.Phone != nil && *req.Phone != "" {
		phone := normalizePhone(*req.Phone)
		if !phoneRegex.MatchString(phone) {
			return Error(c, fiber.StatusBadRequest, "invalid phone number")
		}
		req.Phone = &phone
	}

	user, err := h.db.UpdateUser(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to update user", err)
	}

	return Success(c, user)
}

// validateParentalContact normalizes the provided fields and returns a
// message for the first invalid one. Empty strings are valid and clear the field.
func validateParentalContact(req *models.ParentalContactRequest) string {
	if req.ParentEmail != nil {
		email := strings.TrimSpace(*req.ParentEmail)
		if email != "" && !emailRegex.MatchString(email) {
			return "invalid parent email"
		}
		req.ParentEmail = &email
	}
	if req.ParentPhone != nil {
		phone := normalizePhone(*req.ParentPhone)
		if phone != "" && !phoneRegex.MatchString(phone) {
			return "invalid parent phone number"
		}
		req.ParentPhone = &phone
	}
	return ""
}

// UpdateParentalContact sets where the monthly report is delivered
func (h *Handler) UpdateParentalContact(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.ParentalContactRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if msg := validateParentalContact(&req); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	user, err := h.db.UpdateParentalContact(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to update parental contact", err)
	}

	return Success(c, models.ParentalContact{
		ParentEmail:          user.ParentEmail,
		ParentPhone:          user.ParentPhone,
		ParentTelegramChatID: user.ParentTelegramChatID,
	})
}

// typedPreferences renders boolean preferences as JSON booleans
func typedPreferences(prefs map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(prefs))
	for k, v := range prefs {
		if models.BoolPreferences[k] {
			out[k] = v == "true"
			continue
		}
		out[k] = v
	}
	return out
}

// parsePreferenceUpdate converts a JSON body into stored string values. It
// rejects unknown keys and non-boolean values for boolean preferences.
func parsePreferenceUpdate(body map[string]interface{}) (map[string]string, string) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string]string, len(body))
	for _, k := range keys {
		if _, known := models.PreferenceDefaults[k]; !known {
			return nil, "unknown preference: " + k
		}

		switch v := body[k].(type) {
		case bool:
			if !models.BoolPreferences[k] {
				return nil, k + " must be a string"
			}
			values[k] = strconv.FormatBool(v)
		case string:
			v = strings.TrimSpace(v)
			if models.BoolPreferences[k] {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return nil, k + " must be true or false"
				}
				v = strconv.FormatBool(b)
			} else if v == "" {
				return nil, k + " must not be empty"
			}
			values[k] = v
		default:
			return nil, "invalid value for " + k
		}
	}
	return values, ""
}

// GetPreferences returns the caller's preferences with defaults filled in
func (h *Handler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.db.GetPreferences(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, "failed to get preferences", err)
	}
	return Success(c, typedPreferences(prefs))
}

// UpdatePreferences stores the provided preferences
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body) == 0 {
		return Error(c, fiber.StatusBadRequest, "no preferences provided")
	}

	values, msg := parsePreferenceUpdate(body)
	if msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	if err := h.db.SetPreferences(c.Context(), userID, values); err != nil {
		return internalError(c, "failed to update preferences", err)
	}

	prefs, err := h.db.GetPreferences(c.Context(), userID)
	if err != nil {
		return internalError(c, "failed to get preferences", err)
	}
	return Success(c, typedPreferences(prefs))
}

// ExportAccount returns everything stored for the caller
func (h *Handler) ExportAccount(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := middleware.GetUserID(c)

	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to get user", err)
	}

	export := &models.AccountExport{User: user, ExportedAt: h.now().UTC()}

	if export.Preferences, err = h.db.GetPreferences(ctx, userID); err != nil {
		return internalError(c, "failed to export preferences", err)
	}
	from, to := services.MonthRange(h.today())
	if export.Categories, err = h.db.ListCategories(ctx, userID, from, to); err != nil {
		return internalError(c, "failed to export categories", err)
	}
	if export.Transactions, err = h.db.ListAllTransactions(ctx, userID); err != nil {
		return internalError(c, "failed to export transactions", err)
	}
	if export.Expenses, err = h.db.ListExpenses(ctx, &models.ExpenseFilter{UserID: userID}); err != nil {
		return internalError(c, "failed to export expenses", err)
	}
	if export.RecurringExpenses, err = h.db.ListRecurringExpenses(ctx, userID); err != nil {
		return internalError(c, "failed to export recurring expenses", err)
	}
	if export.Goals, err = h.db.ListGoals(ctx, userID); err != nil {
		return internalError(c, "failed to export goals", err)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="hisab-kitab-export.json"`)
	return Success(c, export)
}

// deleteUserWithBills removes a user and then their archived bill images.
// Keys are listed first since the scan rows cascade with the user. A failed
// image cleanup is logged and does not fail the deletion.
func (h *Handler) deleteUserWithBills(ctx context.Context, userID int) error {
	var keys []string
	if h.bills != nil {
		var err error
		if keys, err = h.db.ListBillScanKeys(ctx, userID); err != nil {
			return fmt.Errorf("list bill images: %w", err)
		}
	}

	if err := h.db.DeleteUser(ctx, userID); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := h.bills.DeleteMultiple(ctx, keys); err != nil {
			log.WithField("user_id", userID).WithError(err).Warn("Failed to delete archived bill images")
		}
	}
	return nil
}

// DeleteAccount removes the caller and everything they own, including
// archived bill images
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.deleteUserWithBills(c.Context(), middleware.GetUserID(c)); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "failed to delete account", err)
	}
	return Success(c, fiber.Map{"message": "account deleted"})
}
