package analytics

import (
	"strconv"
	"time"

	"github.com/farmledger/farmledger/internal/farm"
)

// Reducer field names shared by the reports.
const (
	fieldAmount     = "amount"
	fieldQuantity   = "quantity"
	fieldPrice      = "price"
	fieldProgress   = "progress"
	fieldFieldSize  = "fieldSize"
	fieldConfidence = "confidence"
)

var (
	saleAmount   = Field[farm.Sale]{Name: fieldAmount, Value: func(s farm.Sale) float64 { return s.TotalAmount }}
	saleQuantity = Field[farm.Sale]{Name: fieldQuantity, Value: farm.Sale.QuantityValue}
	salePrice    = Field[farm.Sale]{Name: fieldPrice, Value: func(s farm.Sale) float64 { return s.SellingPrice }}

	expenseAmount = Field[farm.Expenditure]{Name: fieldAmount, Value: func(e farm.Expenditure) float64 { return e.Amount }}

	cropProgress  = Field[farm.Crop]{Name: fieldProgress, Value: func(c farm.Crop) float64 { return float64(c.Progress) }}
	cropFieldSize = Field[farm.Crop]{Name: fieldFieldSize, Value: farm.Crop.FieldSizeValue}

	diagnosisConfidence = Field[farm.Diagnosis]{Name: fieldConfidence, Value: func(d farm.Diagnosis) float64 { return d.Result.Confidence }}
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// monthKey buckets by calendar month in loc, e.g. "2024-03".
func monthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

func monthOfYearKey(t time.Time, loc *time.Location) string {
	return strconv.Itoa(int(t.In(loc).Month()))
}
