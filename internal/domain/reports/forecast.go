package reports

import (
	"math"
	"sort"
	"time"
)

// Forecast parameters. A naive moving-average forecast with no seasonality
// or trend adjustment; do not add smoothing, it would change reported
// numbers silently.
const (
	// reorderThresholdFactor selects candidates: stock at or below
	// 1.5x the configured minimum.
	reorderThresholdFactor = 1.5

	// minDailyRate is the epsilon floor for the daily sales rate,
	// so daysRemaining never divides by zero.
	minDailyRate = 0.1

	// reorderSafetyFactor pads the suggested reorder quantity 20%
	// above the trailing monthly average.
	reorderSafetyFactor = 1.2

	// trailingWindowDays is the sales window for the daily rate.
	trailingWindowDays = 30

	// maxSuggestions caps the output to the most urgent rows.
	maxSuggestions = 10
)

// Forecast computes reorder suggestions for products whose stock is at or
// below the reorder threshold. Output is sorted ascending by days remaining
// (most urgent first) and capped to the top 10.
func Forecast(items []StockItem, now time.Time) []ReorderSuggestion {
	suggestions := make([]ReorderSuggestion, 0, len(items))

	for _, it := range items {
		if !it.BelowThreshold() {
			continue
		}

		dailyRate := it.SoldLast30 / trailingWindowDays
		if dailyRate < minDailyRate {
			dailyRate = minDailyRate
		}

		daysRemaining := int(math.Floor(it.CurrentStock / dailyRate))
		if daysRemaining < 0 {
			daysRemaining = 0
		}

		monthlyRate := it.SoldLast90 / 3
		suggested := math.Ceil(monthlyRate*reorderSafetyFactor - it.CurrentStock)
		if suggested < 0 {
			suggested = 0
		}

		suggestions = append(suggestions, ReorderSuggestion{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			CurrentStock:  it.CurrentStock,
			AvgDailyRate:  dailyRate,
			DaysRemaining: daysRemaining,
			EstimatedDate: now.AddDate(0, 0, daysRemaining),
			SuggestedQty:  suggested,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].DaysRemaining < suggestions[j].DaysRemaining
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
