package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/farmledger/farmledger/internal/farm"
)

// Breakdown is the amount reduction of one expenditure group.
type Breakdown struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// CategoryBreakdown adds the subcategory split of a category.
type CategoryBreakdown struct {
	Breakdown
	SubCategories []Breakdown `json:"subCategories"`
}

// ExpenditureAnalysis breaks spending down along several axes.
type ExpenditureAnalysis struct {
	ByCategory      []CategoryBreakdown `json:"byCategory"`
	MonthlyTrend    []Breakdown         `json:"monthlyTrend"`
	ByPaymentMode   []Breakdown         `json:"byPaymentMode"`
	ByFrequency     []Breakdown         `json:"byFrequency"`
	HighestCategory *Breakdown          `json:"highestCategory"`
	LowestCategory  *Breakdown          `json:"lowestCategory"`
	TotalAmount     float64             `json:"totalAmount"`
	TotalCount      int                 `json:"totalCount"`
	AverageAmount   float64             `json:"averageAmount"`
}

// ExpenditureAnalysis reports spending in the range. Category, payment mode
// and frequency groups are ordered by total, highest first; the monthly trend
// is chronological.
func (s *Service) ExpenditureAnalysis(ctx context.Context, f Filter) (ExpenditureAnalysis, error) {
	rng, err := s.resolve(f)
	if err != nil {
		return ExpenditureAnalysis{}, err
	}
	q := Query{OwnerID: f.OwnerID, Range: rng}
	ds, err := s.load(ctx, loadSpec{exps: &q})
	if err != nil {
		return ExpenditureAnalysis{}, err
	}
	exps := ds.exps

	byCategory := groupExpenses(exps, func(e farm.Expenditure) string { return e.Category })
	SortBuckets(byCategory, fieldAmount, true)

	monthly := groupExpenses(exps, func(e farm.Expenditure) string { return monthKey(e.CreatedAt, s.loc) })
	sort.SliceStable(monthly, func(i, j int) bool { return monthly[i].Key < monthly[j].Key })

	byMode := groupExpenses(exps, func(e farm.Expenditure) string { return string(e.PaymentMode) })
	SortBuckets(byMode, fieldAmount, true)

	byFrequency := groupExpenses(exps, func(e farm.Expenditure) string { return string(e.Frequency) })
	SortBuckets(byFrequency, fieldAmount, true)

	total := Total(exps, expenseAmount)
	out := ExpenditureAnalysis{
		ByCategory:    make([]CategoryBreakdown, 0, len(byCategory)),
		MonthlyTrend:  breakdowns(monthly),
		ByPaymentMode: breakdowns(byMode),
		ByFrequency:   breakdowns(byFrequency),
		TotalAmount:   Round2(total.Sum(fieldAmount)),
		TotalCount:    total.Count,
		AverageAmount: Round2(total.Stat(fieldAmount).Avg()),
	}
	for _, b := range byCategory {
		inCategory := make([]farm.Expenditure, 0, b.Count)
		for _, e := range exps {
			if categoryKey(e) == b.Key {
				inCategory = append(inCategory, e)
			}
		}
		subs := groupExpenses(inCategory, func(e farm.Expenditure) string { return e.SubCategory })
		SortBuckets(subs, fieldAmount, true)
		out.ByCategory = append(out.ByCategory, CategoryBreakdown{Breakdown: breakdown(b), SubCategories: breakdowns(subs)})
	}
	if n := len(out.ByCategory); n > 0 {
		highest := out.ByCategory[0].Breakdown
		lowest := out.ByCategory[n-1].Breakdown
		out.HighestCategory = &highest
		out.LowestCategory = &lowest
	}
	return out, nil
}

func categoryKey(e farm.Expenditure) string {
	if key := strings.TrimSpace(e.Category); key != "" {
		return key
	}
	return UnknownKey
}

func groupExpenses(exps []farm.Expenditure, key func(farm.Expenditure) string) []Bucket {
	return GroupBy(exps, GroupSpec[farm.Expenditure]{Key: key, Fields: []Field[farm.Expenditure]{expenseAmount}})
}

func breakdown(b Bucket) Breakdown {
	st := b.Stat(fieldAmount)
	return Breakdown{
		Key:   b.Key,
		Total: Round2(st.Sum),
		Count: b.Count,
		Avg:   Round2(st.Avg()),
		Min:   Round2(st.Min),
		Max:   Round2(st.Max),
	}
}

func breakdowns(buckets []Bucket) []Breakdown {
	out := make([]Breakdown, len(buckets))
	for i, b := range buckets {
		out[i] = breakdown(b)
	}
	return out
}
