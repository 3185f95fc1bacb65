package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// InsightCategory is the category compared month over month
const InsightCategory = "food"

const dailySavingTarget = 500

// ComputeInsights compares this month's food spend with last month's and
// estimates what saving a fixed amount per day for the rest of the month
// would add up to. Today counts as a day left.
func ComputeInsights(now time.Time, thisMonth, lastMonth float64) *models.Insights {
	this := decimal.NewFromFloat(thisMonth)
	last := decimal.NewFromFloat(lastMonth)

	var change decimal.Decimal
	switch {
	case last.IsPositive():
		change = this.Sub(last).Div(last).Mul(decimal.NewFromInt(100))
	case this.IsPositive():
		change = decimal.NewFromInt(100)
	default:
		change = decimal.Zero
	}
	change = change.Round(2)

	direction := "more"
	if change.IsNegative() {
		direction = "less"
	}

	daysLeft := DaysInMonth(now) - now.Day() + 1
	potential := dailySavingTarget * daysLeft

	pct, _ := change.Float64()
	return &models.Insights{
		Insights: []string{
			fmt.Sprintf("This month you spent %s%% %s on food than last month.", change.Abs().StringFixed(2), direction),
			fmt.Sprintf("If you save ₹%d/day, you can save ₹%d this month.", dailySavingTarget, potential),
		},
		PercentageChange: pct,
		ThisMonthFood:    round2(thisMonth),
		LastMonthFood:    round2(lastMonth),
		PotentialSaving:  float64(potential),
	}
}

// DaysInMonth returns the number of days in t's month
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
