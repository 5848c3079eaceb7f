package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/farmledger/farmledger/internal/farm"
)

// MonthlyPoint is one month of the revenue trend.
type MonthlyPoint struct {
	Month       string  `json:"month"`
	MonthNumber int     `json:"monthNumber"`
	Revenue     float64 `json:"revenue"`
	Sales       int     `json:"sales"`
	Crops       int     `json:"crops"`
	Expenditure float64 `json:"expenditure"`
}

// MonthlyRevenue returns twelve zero-filled months of year. A zero year means
// the current year.
func (s *Service) MonthlyRevenue(ctx context.Context, ownerID string, year int) ([]MonthlyPoint, error) {
	if ownerID == "" {
		return nil, missingParam("ownerId")
	}
	if year == 0 {
		year = s.clock().Year()
	}
	if year < 1 || year > 9999 {
		return nil, invalidParam("year", strconv.Itoa(year))
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	q := Query{OwnerID: ownerID, Range: dayRange(start, start.AddDate(1, 0, -1))}
	ds, err := s.load(ctx, loadSpec{crops: &q, sales: &q, exps: &q})
	if err != nil {
		return nil, err
	}

	sales := Lookup(GroupBy(ds.sales, GroupSpec[farm.Sale]{
		Key:    func(sale farm.Sale) string { return monthOfYearKey(sale.CreatedAt, s.loc) },
		Fields: []Field[farm.Sale]{saleAmount},
	}))
	crops := Lookup(GroupBy(ds.crops, GroupSpec[farm.Crop]{
		Key: func(c farm.Crop) string { return monthOfYearKey(c.CreatedAt, s.loc) },
	}))
	exps := Lookup(GroupBy(ds.exps, GroupSpec[farm.Expenditure]{
		Key:    func(e farm.Expenditure) string { return monthOfYearKey(e.CreatedAt, s.loc) },
		Fields: []Field[farm.Expenditure]{expenseAmount},
	}))

	out := make([]MonthlyPoint, 0, len(monthNames))
	for i, name := range monthNames {
		key := strconv.Itoa(i + 1)
		out = append(out, MonthlyPoint{
			Month:       name,
			MonthNumber: i + 1,
			Revenue:     Round2(sales[key].Sum(fieldAmount)),
			Sales:       sales[key].Count,
			Crops:       crops[key].Count,
			Expenditure: Round2(exps[key].Sum(fieldAmount)),
		})
	}
	return out, nil
}
