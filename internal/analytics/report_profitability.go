package analytics

import (
	"context"

	"github.com/farmledger/farmledger/internal/farm"
)

// SortInput selects the ordering of a tabular report.
type SortInput struct {
	By    string
	Order string
}

// CropProfit is one row of the profitability table.
type CropProfit struct {
	CropID         string  `json:"cropId,omitempty"`
	Crop           string  `json:"crop"`
	Type           string  `json:"type,omitempty"`
	Variety        string  `json:"variety,omitempty"`
	Revenue        float64 `json:"revenue"`
	Expenses       float64 `json:"expenses"`
	Profit         float64 `json:"profit"`
	Margin         float64 `json:"margin"`
	ROI            float64 `json:"roi"`
	Quantity       float64 `json:"quantity"`
	Sales          int     `json:"sales"`
	AvgPrice       float64 `json:"avgPrice"`
	MinPrice       float64 `json:"minPrice"`
	MaxPrice       float64 `json:"maxPrice"`
	RevenuePerUnit float64 `json:"revenuePerUnit"`
}

var profitSortKeys = map[string]sortKey[CropProfit]{
	"crop":           {str: func(r CropProfit) string { return r.Crop }},
	"revenue":        {num: func(r CropProfit) float64 { return r.Revenue }},
	"expenses":       {num: func(r CropProfit) float64 { return r.Expenses }},
	"profit":         {num: func(r CropProfit) float64 { return r.Profit }},
	"margin":         {num: func(r CropProfit) float64 { return r.Margin }},
	"roi":            {num: func(r CropProfit) float64 { return r.ROI }},
	"quantity":       {num: func(r CropProfit) float64 { return r.Quantity }},
	"sales":          {num: func(r CropProfit) float64 { return float64(r.Sales) }},
	"avgPrice":       {num: func(r CropProfit) float64 { return r.AvgPrice }},
	"revenuePerUnit": {num: func(r CropProfit) float64 { return r.RevenuePerUnit }},
}

// CropProfitability reports revenue against allocated expenses for every crop.
// Sales and allocations that point at no known crop are collected in an
// Unknown row. The range applies to sales and expenditures.
func (s *Service) CropProfitability(ctx context.Context, f Filter, order SortInput) ([]CropProfit, error) {
	rng, err := s.resolve(f)
	if err != nil {
		return nil, err
	}
	if _, ok := profitSortKeys[order.By]; order.By != "" && !ok {
		return nil, invalidParam("sortBy", order.By)
	}
	all := Query{OwnerID: f.OwnerID}
	scoped := Query{OwnerID: f.OwnerID, Range: rng}
	ds, err := s.load(ctx, loadSpec{crops: &all, sales: &scoped, exps: &scoped})
	if err != nil {
		return nil, err
	}

	rows := profitRows(ds.crops, ds.sales, ds.exps)
	if err := sortRows(rows, profitSortKeys, order.By, order.Order, "profit"); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = rows[i].rounded()
	}
	return rows, nil
}

// profitRows computes unrounded rows, one per crop in input order plus an
// Unknown row when orphaned sales or allocations exist.
func profitRows(crops []farm.Crop, sales []farm.Sale, exps []farm.Expenditure) []CropProfit {
	known := cropIndex(crops)
	bySale := Lookup(GroupBy(sales, GroupSpec[farm.Sale]{
		Key: func(sale farm.Sale) string {
			if _, ok := known[sale.CropID]; ok {
				return sale.CropID
			}
			return ""
		},
		Fields: []Field[farm.Sale]{saleAmount, saleQuantity, salePrice},
	}))
	allocated := AllocatedByCrop(exps)
	var orphanExpenses float64
	for cropID, amount := range allocated {
		if _, ok := known[cropID]; !ok {
			orphanExpenses += amount
		}
	}

	rows := make([]CropProfit, 0, len(crops)+1)
	for _, c := range crops {
		row := profitRow(bySale[c.ID], allocated[c.ID])
		row.CropID = c.ID
		row.Crop = c.Name
		row.Type = string(c.Type)
		row.Variety = c.Variety
		rows = append(rows, row)
	}
	if orphan, ok := bySale[UnknownKey]; ok || orphanExpenses > 0 {
		row := profitRow(orphan, orphanExpenses)
		row.Crop = UnknownKey
		rows = append(rows, row)
	}
	return rows
}

func profitRow(b Bucket, expenses float64) CropProfit {
	revenue := b.Sum(fieldAmount)
	quantity := b.Sum(fieldQuantity)
	price := b.Stat(fieldPrice)
	profit := revenue - expenses
	return CropProfit{
		Revenue:        revenue,
		Expenses:       expenses,
		Profit:         profit,
		Margin:         ProfitMargin(revenue, expenses),
		ROI:            ROI(profit, expenses),
		Quantity:       quantity,
		Sales:          b.Count,
		AvgPrice:       price.Avg(),
		MinPrice:       price.Min,
		MaxPrice:       price.Max,
		RevenuePerUnit: RevenuePerUnit(revenue, quantity),
	}
}

func (r CropProfit) rounded() CropProfit {
	r.Revenue = Round2(r.Revenue)
	r.Expenses = Round2(r.Expenses)
	r.Profit = Round2(r.Profit)
	r.Margin = Round2(r.Margin)
	r.ROI = Round2(r.ROI)
	r.Quantity = Round2(r.Quantity)
	r.AvgPrice = Round2(r.AvgPrice)
	r.MinPrice = Round2(r.MinPrice)
	r.MaxPrice = Round2(r.MaxPrice)
	r.RevenuePerUnit = Round2(r.RevenuePerUnit)
	return r
}
