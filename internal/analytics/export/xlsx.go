package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/farmledger/farmledger/internal/analytics"
)

const (
	profitabilitySheet = "Profitability"
	monthlySheet       = "Monthly"
	moneyFormat        = `#,##0.00`
)

// WriteProfitabilityXLSX writes a workbook with the profitability table and,
// when monthly is non-empty, a second sheet holding the revenue series.
func WriteProfitabilityXLSX(w io.Writer, rows []analytics.CropProfit, monthly []analytics.MonthlyPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", profitabilitySheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	format := moneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("export: money style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	if err := writeRow(f, profitabilitySheet, 1, toCells(ProfitabilityHeader)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, profitabilitySheet, i+2, []interface{}{
			row.Crop, row.Type, row.Variety,
			row.Revenue, row.Expenses, row.Profit, row.Margin, row.ROI,
			row.Quantity, row.Sales, row.AvgPrice, row.MinPrice, row.MaxPrice, row.RevenuePerUnit,
		}); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(profitabilitySheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export: style header: %w", err)
	}
	if len(rows) > 0 {
		// D..F hold revenue, expenses and profit.
		if err := f.SetCellStyle(profitabilitySheet, "D2", fmt.Sprintf("F%d", len(rows)+1), money); err != nil {
			return fmt.Errorf("export: style money: %w", err)
		}
	}

	if len(monthly) > 0 {
		if _, err := f.NewSheet(monthlySheet); err != nil {
			return fmt.Errorf("export: new sheet: %w", err)
		}
		if err := writeRow(f, monthlySheet, 1, []interface{}{"Month", "Revenue", "Revenue (INR)", "Sales", "Crops", "Expenditure"}); err != nil {
			return err
		}
		for i, point := range monthly {
			if err := writeRow(f, monthlySheet, i+2, []interface{}{
				point.Month, point.Revenue, FormatINR(point.Revenue), point.Sales, point.Crops, point.Expenditure,
			}); err != nil {
				return err
			}
		}
		if err := f.SetRowStyle(monthlySheet, 1, 1, bold); err != nil {
			return fmt.Errorf("export: style header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
