package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

func TestCrossedBudgetLevel(t *testing.T) {
	tests := []struct {
		name          string
		before, after float64
		budget        float64
		expected      int64
	}{
		{"below 80", 100, 700, 1000, 0},
		{"crosses 80", 700, 800, 1000, 80},
		{"crosses 100", 850, 1000, 1000, 100},
		{"jumps past both", 100, 1200, 1000, 100},
		{"already over 80", 820, 900, 1000, 0},
		{"already over budget", 1100, 1300, 1000, 0},
		{"no budget", 0, 500, 0, 0},
		{"fractional threshold", 79.99, 80, 100, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CrossedBudgetLevel(tt.before, tt.after, tt.budget))
		})
	}
}

func TestRenderBudgetAlert(t *testing.T) {
	assert.Equal(t,
		"Hi Asha, you have spent ₹820.00 this month, 80% of your monthly budget of ₹1000.00.",
		RenderBudgetAlert("Asha", 820, 1000, 80))
	assert.Equal(t,
		"Hi Asha, you have spent ₹1050.50 this month, which reaches your monthly budget of ₹1000.00.",
		RenderBudgetAlert("Asha", 1050.5, 1000, 100))
}

func TestSendExpenseReminderEscapesHTML(t *testing.T) {
	mail := &fakeMailer{configured: true}
	n := NewNotifier(&fakeSpendSource{}, mail, nil, nil, nil)

	user := &models.User{ID: 3, FullName: "<Ravi>", Email: "ravi@example.com"}
	require.NoError(t, n.SendExpenseReminder(context.Background(), user))
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].html, "&lt;Ravi&gt;")
	assert.Equal(t, RenderExpenseReminder("<Ravi>"), mail.sent[0].text)
}

func TestSendBudgetAlertErrors(t *testing.T) {
	user := &models.User{ID: 3, FullName: "Ravi", Email: "ravi@example.com", MonthlyBudget: 1000}
	report := &models.SpendReport{Total: 900}

	n := NewNotifier(&fakeSpendSource{}, &fakeMailer{}, nil, nil, nil)
	assert.ErrorIs(t, n.SendBudgetAlert(context.Background(), user, report, 80), ErrEmailNotConfigured)

	failing := errors.New("smtp down")
	n = NewNotifier(&fakeSpendSource{}, &fakeMailer{configured: true, err: failing}, nil, nil, nil)
	assert.ErrorIs(t, n.SendBudgetAlert(context.Background(), user, report, 80), failing)
}
