package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/farmledger/farmledger/internal/analytics"
)

// ProfitabilityHeader names the columns shared by the CSV and XLSX exports.
var ProfitabilityHeader = []string{
	"Crop", "Type", "Variety", "Revenue", "Expenses", "Profit", "Margin %", "ROI %",
	"Quantity", "Sales", "Avg Price", "Min Price", "Max Price", "Revenue / Unit",
}

// WriteProfitabilityCSV serialises the crop profitability table.
func WriteProfitabilityCSV(w io.Writer, rows []analytics.CropProfit) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(ProfitabilityHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Crop,
			row.Type,
			row.Variety,
			formatFloat(row.Revenue),
			formatFloat(row.Expenses),
			formatFloat(row.Profit),
			formatFloat(row.Margin),
			formatFloat(row.ROI),
			formatFloat(row.Quantity),
			strconv.Itoa(row.Sales),
			formatFloat(row.AvgPrice),
			formatFloat(row.MinPrice),
			formatFloat(row.MaxPrice),
			formatFloat(row.RevenuePerUnit),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMonthlyRevenueCSV emits the twelve month revenue series.
func WriteMonthlyRevenueCSV(w io.Writer, points []analytics.MonthlyPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Revenue", "Sales", "Crops", "Expenditure"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Month,
			formatFloat(point.Revenue),
			strconv.Itoa(point.Sales),
			strconv.Itoa(point.Crops),
			formatFloat(point.Expenditure),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteExpenditureCSV prints the category breakdown, sub-categories indented
// under their parent.
func WriteExpenditureCSV(w io.Writer, analysis analytics.ExpenditureAnalysis) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Category", "Sub-category", "Total", "Count", "Average", "Min", "Max"}); err != nil {
		return err
	}
	for _, cat := range analysis.ByCategory {
		if err := writer.Write(breakdownRecord(cat.Key, "", cat.Breakdown)); err != nil {
			return err
		}
		for _, sub := range cat.SubCategories {
			if err := writer.Write(breakdownRecord(cat.Key, sub.Key, sub)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func breakdownRecord(category, sub string, b analytics.Breakdown) []string {
	return []string{
		category,
		sub,
		formatFloat(b.Total),
		strconv.Itoa(b.Count),
		formatFloat(b.Avg),
		formatFloat(b.Min),
		formatFloat(b.Max),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
