package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/farmledger/farmledger/internal/farm"
)

// SeasonStats summarises one season of a season-year.
type SeasonStats struct {
	Season     Season    `json:"season"`
	SeasonYear int       `json:"seasonYear"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Revenue    float64   `json:"revenue"`
	Expenses   float64   `json:"expenses"`
	NetProfit  float64   `json:"netProfit"`
	Margin     float64   `json:"margin"`
	AvgYield   float64   `json:"avgYield"`
	Crops      int       `json:"crops"`
	Sales      int       `json:"sales"`
}

// SeasonalPerformance compares the three seasons of one season-year.
type SeasonalPerformance struct {
	Year              int           `json:"year"`
	Seasons           []SeasonStats `json:"seasons"`
	BestRevenueSeason *Season       `json:"bestRevenueSeason"`
	BestProfitSeason  *Season       `json:"bestProfitSeason"`
}

// Seasonal buckets records created between Zaid (May) of year and the end of
// Rabi (April of year+1). AvgYield is the mean progress of crops planted in
// the season. A zero year means the current season-year.
func (s *Service) Seasonal(ctx context.Context, ownerID string, year int) (SeasonalPerformance, error) {
	if ownerID == "" {
		return SeasonalPerformance{}, missingParam("ownerId")
	}
	if year == 0 {
		_, year = SeasonOf(s.clock())
	}
	if year < 1 || year > 9998 {
		return SeasonalPerformance{}, invalidParam("year", strconv.Itoa(year))
	}
	start, _ := SeasonBounds(Zaid, year, s.loc)
	_, end := SeasonBounds(Rabi, year, s.loc)
	q := Query{OwnerID: ownerID, Range: &DateRange{Start: start, End: end}}
	ds, err := s.load(ctx, loadSpec{crops: &q, sales: &q, exps: &q})
	if err != nil {
		return SeasonalPerformance{}, err
	}

	seasonKey := func(t time.Time) string {
		season, _ := SeasonOf(t.In(s.loc))
		return string(season)
	}
	sales := Lookup(GroupBy(ds.sales, GroupSpec[farm.Sale]{
		Key:    func(sale farm.Sale) string { return seasonKey(sale.CreatedAt) },
		Fields: []Field[farm.Sale]{saleAmount},
	}))
	exps := Lookup(GroupBy(ds.exps, GroupSpec[farm.Expenditure]{
		Key:    func(e farm.Expenditure) string { return seasonKey(e.CreatedAt) },
		Fields: []Field[farm.Expenditure]{expenseAmount},
	}))
	crops := Lookup(GroupBy(ds.crops, GroupSpec[farm.Crop]{
		Key:    func(c farm.Crop) string { return seasonKey(c.CreatedAt) },
		Fields: []Field[farm.Crop]{cropProgress},
	}))

	out := SeasonalPerformance{Year: year, Seasons: make([]SeasonStats, 0, len(Seasons))}
	var bestRevenue, bestProfit float64
	var active bool
	for _, season := range Seasons {
		key := string(season)
		revenue := sales[key].Sum(fieldAmount)
		spent := exps[key].Sum(fieldAmount)
		first, last := SeasonBounds(season, year, s.loc)
		out.Seasons = append(out.Seasons, SeasonStats{
			Season:     season,
			SeasonYear: year,
			Start:      first,
			End:        last,
			Revenue:    Round2(revenue),
			Expenses:   Round2(spent),
			NetProfit:  Round2(revenue - spent),
			Margin:     Round2(ProfitMargin(revenue, spent)),
			AvgYield:   Round2(crops[key].Stat(fieldProgress).Avg()),
			Crops:      crops[key].Count,
			Sales:      sales[key].Count,
		})

		if revenue > 0 && (out.BestRevenueSeason == nil || revenue > bestRevenue) {
			bestRevenue = revenue
			out.BestRevenueSeason = &season
		}
		if sales[key].Count+exps[key].Count == 0 {
			continue
		}
		if !active || revenue-spent > bestProfit {
			bestProfit = revenue - spent
			out.BestProfitSeason = &season
			active = true
		}
	}
	return out, nil
}
