package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// MonthlyReportSubject is the subject line of the parental report email
const MonthlyReportSubject = "Hisab-Kitab Monthly Expense Report"

// WeeklyReportSubject is the subject line of the weekly summary email
const WeeklyReportSubject = "Hisab-Kitab Weekly Spending Summary"

// MonthRange returns [first day of t's month, first day of the next month)
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// PreviousMonthRange returns the calendar month before the one containing t
func PreviousMonthRange(t time.Time) (time.Time, time.Time) {
	start, _ := MonthRange(t)
	return MonthRange(start.AddDate(0, -1, 0))
}

// ParseMonth parses YYYY-MM in loc; an empty string means the month containing now
func ParseMonth(s string, now time.Time) (time.Time, time.Time, error) {
	if s == "" {
		from, to := MonthRange(now)
		return from, to, nil
	}
	t, err := time.ParseInLocation("2006-01", s, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be YYYY-MM: %w", err)
	}
	from, to := MonthRange(t)
	return from, to, nil
}

// BuildSpendReport aggregates entries falling in [from, to) into a report
func BuildSpendReport(userID int, title string, from, to time.Time, entries []models.SpendEntry) *models.SpendReport {
	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	count := 0

	for _, e := range entries {
		if e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		amt := decimal.NewFromFloat(e.Amount)
		total = total.Add(amt)
		name := strings.TrimSpace(e.Category)
		if name == "" {
			name = "Uncategorized"
		}
		byCategory[name] = byCategory[name].Add(amt)
		count++
	}

	totals := make([]models.CategoryTotal, 0, len(byCategory))
	for name, amt := range byCategory {
		f, _ := amt.Round(2).Float64()
		totals = append(totals, models.CategoryTotal{Category: name, Amount: f})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})

	t, _ := total.Round(2).Float64()
	return &models.SpendReport{
		UserID:     userID,
		Title:      title,
		From:       from,
		To:         to,
		Total:      t,
		Count:      count,
		ByCategory: totals,
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"rupees": FormatRupees,
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 24px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 8px 8px; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
        td.amount { text-align: right; }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2 style="margin: 0;">{{.Report.Title}}</h2>
            <p style="margin: 8px 0 0;">{{.Name}} &middot; {{.Period}}</p>
        </div>
        <div class="content">
            <p>Total spent: <strong>{{rupees .Report.Total}}</strong> across {{.Report.Count}} expenses.</p>
            {{- if .Report.ByCategory}}
            <table>
                {{- range .Report.ByCategory}}
                <tr><td>{{.Category}}</td><td class="amount">{{rupees .Amount}}</td></tr>
                {{- end}}
            </table>
            {{- else}}
            <p>No expenses were recorded in this period.</p>
            {{- end}}
        </div>
        <div class="footer">
            <p>Sent by Hisab-Kitab</p>
        </div>
    </div>
</body>
</html>`))

// RenderReportHTML renders the email body for a report about name
func RenderReportHTML(name string, r *models.SpendReport) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Name   string
		Period string
		Report *models.SpendReport
	}{name, FormatPeriod(r.From, r.To), r})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// RenderReportText renders the plain text email body
func RenderReportText(name string, r *models.SpendReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s - %s\n\n", r.Title, name, FormatPeriod(r.From, r.To))
	fmt.Fprintf(&b, "Total spent: %s across %d expenses.\n", FormatRupees(r.Total), r.Count)
	for _, c := range r.ByCategory {
		fmt.Fprintf(&b, "- %s: %s\n", c.Category, FormatRupees(c.Amount))
	}
	return b.String()
}

// RenderReportSummary renders the short message sent by SMS and Telegram
func RenderReportSummary(name string, r *models.SpendReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s for %s (%s): total spent %s.", r.Title, name, FormatPeriod(r.From, r.To), FormatRupees(r.Total))

	top := r.ByCategory
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) > 0 {
		parts := make([]string, len(top))
		for i, c := range top {
			parts[i] = fmt.Sprintf("%s %s", c.Category, FormatRupees(c.Amount))
		}
		fmt.Fprintf(&b, " Top: %s.", strings.Join(parts, ", "))
	}
	return b.String()
}

// FormatRupees formats an amount as ₹1234.50
func FormatRupees(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPeriod renders [from, to) with an inclusive end date
func FormatPeriod(from, to time.Time) string {
	last := to.AddDate(0, 0, -1)
	return fmt.Sprintf("%s - %s", from.Format("02 Jan 2006"), last.Format("02 Jan 2006"))
}
