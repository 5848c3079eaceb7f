package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/farmledger/farmledger/internal/analytics"
)

var profitRows = []analytics.CropProfit{
	{Crop: "Wheat", Type: "Grain", Revenue: 1200, Expenses: 800, Profit: 400, Margin: 33.33, ROI: 50, Quantity: 60, Sales: 2, AvgPrice: 20, MinPrice: 18, MaxPrice: 22, RevenuePerUnit: 20},
	{Crop: "Unknown", Revenue: 90, Profit: 90, Margin: 100, Sales: 1},
}

func TestWriteProfitabilityCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteProfitabilityCSV(buf, profitRows))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ProfitabilityHeader, records[0])
	assert.Equal(t, []string{"Wheat", "Grain", "", "1200.00", "800.00", "400.00", "33.33", "50.00", "60.00", "2", "20.00", "18.00", "22.00", "20.00"}, records[1])
	assert.Equal(t, "Unknown", records[2][0])
}

func TestWriteMonthlyRevenueCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	points := []analytics.MonthlyPoint{{Month: "Jan", MonthNumber: 1, Revenue: 10.5, Sales: 1, Crops: 2, Expenditure: 3}}
	require.NoError(t, WriteMonthlyRevenueCSV(buf, points))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan", "10.50", "1", "2", "3.00"}, records[1])
}

func TestWriteExpenditureCSVNestsSubCategories(t *testing.T) {
	analysis := analytics.ExpenditureAnalysis{
		ByCategory: []analytics.CategoryBreakdown{{
			Breakdown:     analytics.Breakdown{Key: "Seeds", Total: 500, Count: 2, Avg: 250, Min: 200, Max: 300},
			SubCategories: []analytics.Breakdown{{Key: "Hybrid", Total: 300, Count: 1, Avg: 300, Min: 300, Max: 300}},
		}},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteExpenditureCSV(buf, analysis))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Seeds", "", "500.00", "2", "250.00", "200.00", "300.00"}, records[1])
	assert.Equal(t, "Hybrid", records[2][1])
}

func TestWriteProfitabilityXLSX(t *testing.T) {
	monthly := []analytics.MonthlyPoint{{Month: "Jan", MonthNumber: 1, Revenue: 1234.5}}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteProfitabilityXLSX(buf, profitRows, monthly))

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Profitability", "Monthly"}, book.GetSheetList())
	rows, err := book.GetRows("Profitability", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Crop", rows[0][0])
	assert.Equal(t, "Wheat", rows[1][0])
	assert.Equal(t, "1200", rows[1][3])

	months, err := book.GetRows("Monthly", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Contains(t, months[1][2], "1,234.5")
}

func TestWriteProfitabilityXLSXWithoutMonthly(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteProfitabilityXLSX(buf, nil, nil))

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Profitability"}, book.GetSheetList())
}

func TestFormatINR(t *testing.T) {
	assert.Contains(t, FormatINR(1234.5), "1,234.5")
}
