package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CHAT_PROVIDER", "")
	t.Setenv("MONTHLY_REPORT_SCHEDULE", "")
	t.Setenv("RECURRING_SCHEDULE", "")
	t.Setenv("BUDGET_ALERT_SCHEDULE", "")
	t.Setenv("EXPENSE_REMINDER_SCHEDULE", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "openai", cfg.ChatProvider)
	assert.Equal(t, "5 0 1 * *", cfg.MonthlyReportSchedule)
	assert.Equal(t, "0 1 * * *", cfg.RecurringSchedule)
	assert.Equal(t, "0 20 * * *", cfg.BudgetAlertSchedule)
	assert.Equal(t, "0 21 * * *", cfg.ReminderSchedule)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("SMTP_ENABLED", "true")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.SMTPEnabled)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.IsProduction())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Invalid"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Asia/Kolkata"
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestConfiguredChecks(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SMSConfigured())
	assert.False(t, cfg.StorageConfigured())

	cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber = "AC1", "tok", "+15550001111"
	assert.True(t, cfg.SMSConfigured())

	cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey = "localhost:9000", "a", "b"
	assert.False(t, cfg.StorageConfigured())
	cfg.S3Enabled = true
	assert.True(t, cfg.StorageConfigured())
}
