package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Performance score weights and clamp bounds.
const (
	progressWeight = 0.4
	varianceWeight = 0.3
	harvestWeight  = 0.3
	varianceClamp  = 30.0
	harvestCeiling = 30.0
)

// ProfitMargin is (revenue-expenditure)/revenue as a percentage, 0 without revenue.
func ProfitMargin(revenue, expenditure float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return (revenue - expenditure) / revenue * 100
}

// ROI is profit over expenses as a percentage, 0 without expenses.
func ROI(profit, expenses float64) float64 {
	if expenses <= 0 {
		return 0
	}
	return profit / expenses * 100
}

// RevenuePerUnit is revenue divided by quantity, 0 without quantity.
func RevenuePerUnit(revenue, quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return revenue / quantity
}

// ExpectedProgress is the share of the crop cycle elapsed, as a percentage.
func ExpectedProgress(daysFromStart, totalCycleDays float64) float64 {
	if totalCycleDays <= 0 {
		return 0
	}
	return daysFromStart / totalCycleDays * 100
}

// ProgressVariance is actual minus expected progress.
func ProgressVariance(actual, expected float64) float64 {
	return actual - expected
}

// PerformanceScore blends raw progress, schedule variance and harvest proximity.
func PerformanceScore(progress, variance, daysToHarvest float64) float64 {
	harvest := harvestCeiling
	if daysToHarvest < 0 {
		harvest = clamp(harvestCeiling+daysToHarvest, 0, harvestCeiling)
	}
	return progressWeight*progress +
		varianceWeight*clamp(2*variance, -varianceClamp, varianceClamp) +
		harvestWeight*harvest
}

// Percentage is part/whole×100, 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// Round2 rounds half away from zero to two decimals. NaN and infinities become 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
