package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeInsights(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		this      float64
		last      float64
		wantPct   float64
		wantFirst string
	}{
		{"increase", 1500, 1000, 50, "This month you spent 50.00% more on food than last month."},
		{"decrease", 750, 1000, -25, "This month you spent 25.00% less on food than last month."},
		{"no history", 300, 0, 100, "This month you spent 100.00% more on food than last month."},
		{"nothing spent", 0, 0, 0, "This month you spent 0.00% more on food than last month."},
		{"fractional", 1000, 3000, -66.67, "This month you spent 66.67% less on food than last month."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeInsights(now, tt.this, tt.last)
			assert.InDelta(t, tt.wantPct, got.PercentageChange, 0.001)
			assert.Equal(t, tt.wantFirst, got.Insights[0])
		})
	}
}

func TestComputeInsightsSaving(t *testing.T) {
	// June has 30 days; the 20th through the 30th is 11 days
	got := ComputeInsights(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), 0, 0)
	assert.Equal(t, 5500.0, got.PotentialSaving)
	assert.Equal(t, "If you save ₹500/day, you can save ₹5500 this month.", got.Insights[1])

	last := ComputeInsights(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), 0, 0)
	assert.Equal(t, 500.0, last.PotentialSaving)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysInMonth(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysInMonth(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}
