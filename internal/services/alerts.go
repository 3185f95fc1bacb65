package services

import (
	"context"
	"fmt"
	"html"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

const (
	BudgetAlertSubject     = "Hisab-Kitab Budget Alert"
	ExpenseReminderSubject = "Hisab-Kitab Daily Reminder"
)

// budgetAlertLevels are the usage percentages that trigger an alert, highest first
var budgetAlertLevels = []int64{100, 80}

// CrossedBudgetLevel returns the highest alert level that spend crossed
// going from before to after, or 0 when none was crossed
func CrossedBudgetLevel(before, after, budget float64) int64 {
	if budget <= 0 {
		return 0
	}
	b := decimal.NewFromFloat(budget)
	prev := decimal.NewFromFloat(before)
	curr := decimal.NewFromFloat(after)
	for _, level := range budgetAlertLevels {
		threshold := b.Mul(decimal.NewFromInt(level)).Div(decimal.NewFromInt(100))
		if prev.LessThan(threshold) && curr.GreaterThanOrEqual(threshold) {
			return level
		}
	}
	return 0
}

// RenderBudgetAlert renders the alert for a user whose spend reached level
// percent of budget
func RenderBudgetAlert(name string, spent, budget float64, level int64) string {
	if level >= 100 {
		return fmt.Sprintf("Hi %s, you have spent %s this month, which reaches your monthly budget of %s.",
			name, FormatRupees(spent), FormatRupees(budget))
	}
	return fmt.Sprintf("Hi %s, you have spent %s this month, %d%% of your monthly budget of %s.",
		name, FormatRupees(spent), level, FormatRupees(budget))
}

// RenderExpenseReminder renders the nudge sent when nothing was logged today
func RenderExpenseReminder(name string) string {
	return fmt.Sprintf("Hi %s, you have not logged any expenses today. Take a minute to add them to Hisab-Kitab.", name)
}

// SendBudgetAlert emails the user that report's total crossed level percent
// of their monthly budget
func (n *Notifier) SendBudgetAlert(ctx context.Context, user *models.User, report *models.SpendReport, level int64) error {
	text := RenderBudgetAlert(user.FullName, report.Total, user.MonthlyBudget, level)
	if err := n.sendNotice(ctx, user.Email, BudgetAlertSubject, text); err != nil {
		log.WithField("user_id", user.ID).WithError(err).Warn("budget alert delivery failed")
		return err
	}
	return nil
}

// SendExpenseReminder emails the user a reminder to log today's expenses
func (n *Notifier) SendExpenseReminder(ctx context.Context, user *models.User) error {
	if err := n.sendNotice(ctx, user.Email, ExpenseReminderSubject, RenderExpenseReminder(user.FullName)); err != nil {
		log.WithField("user_id", user.ID).WithError(err).Warn("expense reminder delivery failed")
		return err
	}
	return nil
}

// sendNotice emails a one-paragraph message
func (n *Notifier) sendNotice(ctx context.Context, to, subject, text string) error {
	if n.mail == nil || !n.mail.IsConfigured() {
		log.WithField("to", to).Info("SMTP not configured, email not sent")
		return ErrEmailNotConfigured
	}
	err := n.mail.SendEmail(ctx, to, subject, "<p>"+html.EscapeString(text)+"</p>", text)
	n.observe(ChannelEmail, err)
	return err
}
