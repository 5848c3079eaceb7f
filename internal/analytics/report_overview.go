package analytics

import (
	"context"

	"github.com/farmledger/farmledger/internal/farm"
)

// ShareEntry is a counted group with its share of the total.
type ShareEntry struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Overview is the owner's headline dashboard.
type Overview struct {
	TotalRevenue        float64      `json:"totalRevenue"`
	TotalExpenditure    float64      `json:"totalExpenditure"`
	NetProfit           float64      `json:"netProfit"`
	ProfitMargin        float64      `json:"profitMargin"`
	TotalSales          int          `json:"totalSales"`
	TotalExpenses       int          `json:"totalExpenses"`
	TotalCrops          int          `json:"totalCrops"`
	AverageProgress     float64      `json:"averageProgress"`
	TotalFieldSize      float64      `json:"totalFieldSize"`
	CropsByStage        []ShareEntry `json:"cropsByStage"`
	CropsByType         []ShareEntry `json:"cropsByType"`
	CropsReadyToHarvest int          `json:"cropsReadyToHarvest"`
	PendingPayments     float64      `json:"pendingPayments"`
	PendingSales        int          `json:"pendingSales"`
}

// Overview totals revenue and expenditure within the range. Crop statistics
// cover every crop the owner has, regardless of the range.
func (s *Service) Overview(ctx context.Context, f Filter) (Overview, error) {
	rng, err := s.resolve(f)
	if err != nil {
		return Overview{}, err
	}
	scoped := Query{OwnerID: f.OwnerID, Range: rng}
	all := Query{OwnerID: f.OwnerID}
	ds, err := s.load(ctx, loadSpec{crops: &all, sales: &scoped, exps: &scoped})
	if err != nil {
		return Overview{}, err
	}

	sales := Total(ds.sales, saleAmount)
	pending := Total(filterSales(ds.sales, func(sale farm.Sale) bool {
		return sale.PaymentStatus == farm.PaymentPending
	}), saleAmount)
	exps := Total(ds.exps, expenseAmount)
	crops := Total(ds.crops, cropProgress, cropFieldSize)

	revenue := sales.Sum(fieldAmount)
	spent := exps.Sum(fieldAmount)

	byStage := GroupBy(ds.crops, GroupSpec[farm.Crop]{Key: func(c farm.Crop) string { return string(c.CurrentStage) }})
	byType := GroupBy(ds.crops, GroupSpec[farm.Crop]{Key: func(c farm.Crop) string { return string(c.Type) }})

	return Overview{
		TotalRevenue:        Round2(revenue),
		TotalExpenditure:    Round2(spent),
		NetProfit:           Round2(revenue - spent),
		ProfitMargin:        Round2(ProfitMargin(revenue, spent)),
		TotalSales:          sales.Count,
		TotalExpenses:       exps.Count,
		TotalCrops:          crops.Count,
		AverageProgress:     Round2(crops.Stat(fieldProgress).Avg()),
		TotalFieldSize:      Round2(crops.Sum(fieldFieldSize)),
		CropsByStage:        shares(byStage, stageKeys(), crops.Count),
		CropsByType:         shares(byType, cropTypeKeys(), crops.Count),
		CropsReadyToHarvest: Lookup(byStage)[string(farm.StageHarvesting)].Count,
		PendingPayments:     Round2(pending.Sum(fieldAmount)),
		PendingSales:        pending.Count,
	}, nil
}

// shares lists the known keys in order, zero-filled, followed by any other
// buckets in first-seen order.
func shares(buckets []Bucket, known []string, total int) []ShareEntry {
	byKey := Lookup(buckets)
	out := make([]ShareEntry, 0, len(known)+len(buckets))
	seen := make(map[string]bool, len(known))
	for _, key := range known {
		seen[key] = true
		count := byKey[key].Count
		out = append(out, ShareEntry{Key: key, Count: count, Percentage: Round2(Percentage(float64(count), float64(total)))})
	}
	for _, b := range buckets {
		if seen[b.Key] {
			continue
		}
		out = append(out, ShareEntry{Key: b.Key, Count: b.Count, Percentage: Round2(Percentage(float64(b.Count), float64(total)))})
	}
	return out
}

func stageKeys() []string {
	keys := make([]string, len(farm.Stages))
	for i, st := range farm.Stages {
		keys[i] = string(st)
	}
	return keys
}

func cropTypeKeys() []string {
	keys := make([]string, len(farm.CropTypes))
	for i, ct := range farm.CropTypes {
		keys[i] = string(ct)
	}
	return keys
}

func filterSales(sales []farm.Sale, keep func(farm.Sale) bool) []farm.Sale {
	var out []farm.Sale
	for _, sale := range sales {
		if keep(sale) {
			out = append(out, sale)
		}
	}
	return out
}
