package analytics

import (
	"context"
	"sort"

	"github.com/farmledger/farmledger/internal/farm"
)

// Distribution groupings.
const (
	GroupByCrop    = "crop"
	GroupByType    = "type"
	GroupByVariety = "variety"
)

var distributionColors = []string{"#ef4444", "#f97316", "#eab308", "#22c55e", "#8b5cf6", "#06b6d4", "#ec4899"}

const topN = 3

// DistributionSlice is one group of the sales distribution.
type DistributionSlice struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Count        int     `json:"count"`
	Quantity     float64 `json:"quantity"`
	RevenueShare float64 `json:"revenueShare"`
	SalesShare   float64 `json:"salesShare"`
	AvgPrice     float64 `json:"avgPrice"`
	Color        string  `json:"color"`
}

// RankedEntry names a group and the value it was ranked on.
type RankedEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SalesDistribution is revenue split by crop, crop type or variety.
type SalesDistribution struct {
	GroupBy       string              `json:"groupBy"`
	Slices        []DistributionSlice `json:"slices"`
	TopByRevenue  []RankedEntry       `json:"topByRevenue"`
	TopBySales    []RankedEntry       `json:"topBySales"`
	TopByQuantity []RankedEntry       `json:"topByQuantity"`
	TotalRevenue  float64             `json:"totalRevenue"`
	TotalSales    int                 `json:"totalSales"`
	TotalQuantity float64             `json:"totalQuantity"`
}

// SalesDistribution groups sales in the range. Slices are ordered by revenue,
// highest first.
func (s *Service) SalesDistribution(ctx context.Context, f Filter, groupBy string) (SalesDistribution, error) {
	if groupBy == "" {
		groupBy = GroupByCrop
	}
	if groupBy != GroupByCrop && groupBy != GroupByType && groupBy != GroupByVariety {
		return SalesDistribution{}, invalidParam("groupBy", groupBy)
	}
	rng, err := s.resolve(f)
	if err != nil {
		return SalesDistribution{}, err
	}
	all := Query{OwnerID: f.OwnerID}
	scoped := Query{OwnerID: f.OwnerID, Range: rng}
	ds, err := s.load(ctx, loadSpec{crops: &all, sales: &scoped})
	if err != nil {
		return SalesDistribution{}, err
	}

	known := cropIndex(ds.crops)
	key := func(sale farm.Sale) string {
		c, ok := known[sale.CropID]
		if !ok {
			return ""
		}
		switch groupBy {
		case GroupByType:
			return string(c.Type)
		case GroupByVariety:
			return c.Variety
		default:
			return c.ID
		}
	}
	buckets := GroupBy(ds.sales, GroupSpec[farm.Sale]{Key: key, Fields: []Field[farm.Sale]{saleAmount, saleQuantity, salePrice}})
	SortBuckets(buckets, fieldAmount, true)
	totals := Total(ds.sales, saleAmount, saleQuantity)

	out := SalesDistribution{
		GroupBy:       groupBy,
		Slices:        make([]DistributionSlice, 0, len(buckets)),
		TotalRevenue:  Round2(totals.Sum(fieldAmount)),
		TotalSales:    totals.Count,
		TotalQuantity: Round2(totals.Sum(fieldQuantity)),
	}
	for i, b := range buckets {
		name := b.Key
		if c, ok := known[b.Key]; ok && groupBy == GroupByCrop {
			name = c.Name
		}
		out.Slices = append(out.Slices, DistributionSlice{
			Key:          b.Key,
			Name:         name,
			Amount:       Round2(b.Sum(fieldAmount)),
			Count:        b.Count,
			Quantity:     Round2(b.Sum(fieldQuantity)),
			RevenueShare: Round2(Percentage(b.Sum(fieldAmount), totals.Sum(fieldAmount))),
			SalesShare:   Round2(Percentage(float64(b.Count), float64(totals.Count))),
			AvgPrice:     Round2(b.Stat(fieldPrice).Avg()),
			Color:        distributionColors[i%len(distributionColors)],
		})
	}
	out.TopByRevenue = topSlices(out.Slices, func(d DistributionSlice) float64 { return d.Amount })
	out.TopBySales = topSlices(out.Slices, func(d DistributionSlice) float64 { return float64(d.Count) })
	out.TopByQuantity = topSlices(out.Slices, func(d DistributionSlice) float64 { return d.Quantity })
	return out, nil
}

func topSlices(slices []DistributionSlice, value func(DistributionSlice) float64) []RankedEntry {
	ranked := make([]DistributionSlice, len(slices))
	copy(ranked, slices)
	sort.SliceStable(ranked, func(i, j int) bool { return value(ranked[i]) > value(ranked[j]) })
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]RankedEntry, len(ranked))
	for i, d := range ranked {
		out[i] = RankedEntry{Name: d.Name, Value: value(d)}
	}
	return out
}
