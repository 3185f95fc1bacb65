package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

func TestMonthRanges(t *testing.T) {
	from, to := MonthRange(time.Date(2024, 3, 17, 15, 4, 0, 0, time.UTC))
	assert.Equal(t, day(2024, 3, 1), from)
	assert.Equal(t, day(2024, 4, 1), to)

	from, to = PreviousMonthRange(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))
	assert.Equal(t, day(2023, 12, 1), from)
	assert.Equal(t, day(2024, 1, 1), to)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)

	from, to, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 1), from)
	assert.Equal(t, day(2024, 6, 1), to)

	from, _, err = ParseMonth("2023-11", now)
	require.NoError(t, err)
	assert.Equal(t, day(2023, 11, 1), from)

	_, _, err = ParseMonth("11/2023", now)
	assert.Error(t, err)
}

func TestBuildSpendReport(t *testing.T) {
	from, to := day(2024, 5, 1), day(2024, 6, 1)
	entries := []models.SpendEntry{
		{Category: "Food", Amount: 120.10, Date: day(2024, 5, 2)},
		{Category: "Food", Amount: 0.20, Date: day(2024, 5, 3)},
		{Category: "Travel", Amount: 450, Date: day(2024, 5, 10)},
		{Category: " ", Amount: 10, Date: day(2024, 5, 11)},
		{Category: "Health", Amount: 10, Date: day(2024, 5, 12)},
		{Category: "Food", Amount: 999, Date: day(2024, 6, 1)},
		{Category: "Food", Amount: 999, Date: day(2024, 4, 30)},
	}

	r := BuildSpendReport(7, MonthlyReportSubject, from, to, entries)
	assert.Equal(t, 7, r.UserID)
	assert.Equal(t, 5, r.Count)
	assert.Equal(t, 590.30, r.Total)
	assert.Equal(t, []models.CategoryTotal{
		{Category: "Travel", Amount: 450},
		{Category: "Food", Amount: 120.30},
		{Category: "Health", Amount: 10},
		{Category: "Uncategorized", Amount: 10},
	}, r.ByCategory)
}

func TestRenderReport(t *testing.T) {
	r := BuildSpendReport(1, MonthlyReportSubject, day(2024, 5, 1), day(2024, 6, 1), []models.SpendEntry{
		{Category: "Food", Amount: 200, Date: day(2024, 5, 2)},
		{Category: "Travel", Amount: 100.5, Date: day(2024, 5, 3)},
		{Category: "Health", Amount: 50, Date: day(2024, 5, 4)},
		{Category: "Shopping", Amount: 25, Date: day(2024, 5, 5)},
	})

	html, err := RenderReportHTML("Asha <Rao>", r)
	require.NoError(t, err)
	assert.Contains(t, html, "Asha &lt;Rao&gt;")
	assert.Contains(t, html, "₹375.50")
	assert.Contains(t, html, "01 May 2024 - 31 May 2024")

	text := RenderReportText("Asha", r)
	assert.Contains(t, text, "Total spent: ₹375.50 across 4 expenses.")
	assert.Contains(t, text, "- Travel: ₹100.50")

	summary := RenderReportSummary("Asha", r)
	assert.Equal(t,
		"Hisab-Kitab Monthly Expense Report for Asha (01 May 2024 - 31 May 2024): total spent ₹375.50. Top: Food ₹200.00, Travel ₹100.50, Health ₹50.00.",
		summary)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹0.00", FormatRupees(0))
	assert.Equal(t, "₹1234.50", FormatRupees(1234.5))
}
