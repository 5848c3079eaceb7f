package analytics

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/shared"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	dueSoonDays      = 7
)

// Crop performance statuses.
const (
	StatusOverdue    = "Overdue"
	StatusDueSoon    = "Due Soon"
	StatusCompleted  = "Completed"
	StatusReady      = "Ready"
	StatusInProgress = "In Progress"
)

// PageInput selects a page of line items.
type PageInput struct {
	Page  int
	Limit int
}

// ExpenseLine is one expenditure as it bears on a single crop.
type ExpenseLine struct {
	ID               string    `json:"id"`
	Date             farm.Date `json:"date"`
	Category         string    `json:"category"`
	SubCategory      string    `json:"subCategory"`
	Amount           float64   `json:"amount"`
	AllocatedAmount  float64   `json:"allocatedAmount"`
	AllocationMethod string    `json:"allocationMethod"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CropFinancialSummary is the ledger of a single crop.
type CropFinancialSummary struct {
	Crop              farm.Crop         `json:"crop"`
	TotalRevenue      float64           `json:"totalRevenue"`
	TotalExpenses     float64           `json:"totalExpenses"`
	Profit            float64           `json:"profit"`
	ProfitMargin      float64           `json:"profitMargin"`
	ROI               float64           `json:"roi"`
	Sales             []farm.Sale       `json:"sales"`
	Expenses          []ExpenseLine     `json:"expenses"`
	SalesPagination   shared.Pagination `json:"salesPagination"`
	ExpensePagination shared.Pagination `json:"expensePagination"`
}

// CropFinancialSummary totals revenue and allocated expenses for cropID over
// the whole range and returns one page of the underlying sales and expenses.
func (s *Service) CropFinancialSummary(ctx context.Context, f Filter, cropID string, page PageInput) (CropFinancialSummary, error) {
	if cropID == "" {
		return CropFinancialSummary{}, missingParam("cropId")
	}
	if page.Page < 0 {
		return CropFinancialSummary{}, invalidParam("page", strconv.Itoa(page.Page))
	}
	if page.Limit < 0 || page.Limit > maxPageLimit {
		return CropFinancialSummary{}, invalidParam("limit", strconv.Itoa(page.Limit))
	}
	if page.Limit == 0 {
		page.Limit = defaultPageLimit
	}
	rng, err := s.resolve(f)
	if err != nil {
		return CropFinancialSummary{}, err
	}
	crop, err := s.getCrop(ctx, f.OwnerID, cropID)
	if err != nil {
		return CropFinancialSummary{}, err
	}
	q := Query{OwnerID: f.OwnerID, Range: rng, CropID: cropID}
	ds, err := s.load(ctx, loadSpec{sales: &q, exps: &q})
	if err != nil {
		return CropFinancialSummary{}, err
	}

	revenue := Total(ds.sales, saleAmount).Sum(fieldAmount)
	lines := make([]ExpenseLine, 0, len(ds.exps))
	var expenses float64
	for _, e := range ds.exps {
		share := e.AllocatedTo(cropID)
		expenses += share
		lines = append(lines, ExpenseLine{
			ID:               e.ID,
			Date:             e.ExpenseDate,
			Category:         e.Category,
			SubCategory:      e.SubCategory,
			Amount:           Round2(e.Amount),
			AllocatedAmount:  Round2(share),
			AllocationMethod: string(e.AllocationMethod),
			CreatedAt:        e.CreatedAt,
		})
	}
	profit := revenue - expenses

	salesPage := shared.NewPagination(page.Page, page.Limit, len(ds.sales))
	expensePage := shared.NewPagination(page.Page, page.Limit, len(lines))
	return CropFinancialSummary{
		Crop:              crop,
		TotalRevenue:      Round2(revenue),
		TotalExpenses:     Round2(expenses),
		Profit:            Round2(profit),
		ProfitMargin:      Round2(ProfitMargin(revenue, expenses)),
		ROI:               Round2(ROI(profit, expenses)),
		Sales:             pageOf(ds.sales, salesPage),
		Expenses:          pageOf(lines, expensePage),
		SalesPagination:   salesPage,
		ExpensePagination: expensePage,
	}, nil
}

func pageOf[T any](items []T, p shared.Pagination) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// CropPerformance is the schedule and financial scorecard of one crop.
type CropPerformance struct {
	CropID           string     `json:"cropId"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	Variety          string     `json:"variety"`
	CurrentStage     farm.Stage `json:"currentStage"`
	Progress         float64    `json:"progress"`
	FieldSize        string     `json:"fieldSize"`
	Location         string     `json:"location"`
	StartDate        farm.Date  `json:"startDate"`
	ExpectedHarvest  farm.Date  `json:"expectedHarvest"`
	WhenToPluck      farm.Date  `json:"whenToPluck"`
	DaysFromStart    float64    `json:"daysFromStart"`
	DaysToHarvest    float64    `json:"daysToHarvest"`
	TotalCycleDays   float64    `json:"totalCycleDays"`
	ExpectedProgress float64    `json:"expectedProgress"`
	ProgressVariance float64    `json:"progressVariance"`
	PerformanceScore float64    `json:"performanceScore"`
	TotalRevenue     float64    `json:"totalRevenue"`
	TotalExpenses    float64    `json:"totalExpenses"`
	NetProfit        float64    `json:"netProfit"`
	ProfitMargin     float64    `json:"profitMargin"`
	ROI              float64    `json:"roi"`
	TotalSales       int        `json:"totalSales"`
	Status           string     `json:"status"`
}

// PerformanceSummary aggregates the scorecards.
type PerformanceSummary struct {
	TotalCrops          int              `json:"totalCrops"`
	AvgProgress         float64          `json:"avgProgress"`
	AvgPerformanceScore float64          `json:"avgPerformanceScore"`
	TotalRevenue        float64          `json:"totalRevenue"`
	TotalExpenses       float64          `json:"totalExpenses"`
	TotalProfit         float64          `json:"totalProfit"`
	AvgProfitMargin     float64          `json:"avgProfitMargin"`
	AvgROI              float64          `json:"avgROI"`
	CropsOverdue        int              `json:"cropsOverdue"`
	CropsDueSoon        int              `json:"cropsDueSoon"`
	CropsReady          int              `json:"cropsReady"`
	CropsCompleted      int              `json:"cropsCompleted"`
	TopPerformer        *CropPerformance `json:"topPerformer"`
}

// PerformanceReport is the crop performance table and its summary.
type PerformanceReport struct {
	Crops   []CropPerformance  `json:"crops"`
	Summary PerformanceSummary `json:"summary"`
}

var performanceSortKeys = map[string]sortKey[CropPerformance]{
	"name":             {str: func(r CropPerformance) string { return r.Name }},
	"progress":         {num: func(r CropPerformance) float64 { return r.Progress }},
	"performanceScore": {num: func(r CropPerformance) float64 { return r.PerformanceScore }},
	"expectedProgress": {num: func(r CropPerformance) float64 { return r.ExpectedProgress }},
	"progressVariance": {num: func(r CropPerformance) float64 { return r.ProgressVariance }},
	"daysToHarvest":    {num: func(r CropPerformance) float64 { return r.DaysToHarvest }},
	"daysFromStart":    {num: func(r CropPerformance) float64 { return r.DaysFromStart }},
	"totalRevenue":     {num: func(r CropPerformance) float64 { return r.TotalRevenue }},
	"totalExpenses":    {num: func(r CropPerformance) float64 { return r.TotalExpenses }},
	"netProfit":        {num: func(r CropPerformance) float64 { return r.NetProfit }},
	"profitMargin":     {num: func(r CropPerformance) float64 { return r.ProfitMargin }},
	"roi":              {num: func(r CropPerformance) float64 { return r.ROI }},
	"totalSales":       {num: func(r CropPerformance) float64 { return float64(r.TotalSales) }},
}

// CropPerformance scores crops created in the range against their planned
// cycle. Revenue and expenses include every sale and allocation of the crop.
func (s *Service) CropPerformance(ctx context.Context, f Filter, order SortInput) (PerformanceReport, error) {
	rng, err := s.resolve(f)
	if err != nil {
		return PerformanceReport{}, err
	}
	if _, ok := performanceSortKeys[order.By]; order.By != "" && !ok {
		return PerformanceReport{}, invalidParam("sortBy", order.By)
	}
	scoped := Query{OwnerID: f.OwnerID, Range: rng}
	all := Query{OwnerID: f.OwnerID}
	ds, err := s.load(ctx, loadSpec{crops: &scoped, sales: &all, exps: &all})
	if err != nil {
		return PerformanceReport{}, err
	}

	now := s.clock()
	revenue := Lookup(GroupBy(ds.sales, GroupSpec[farm.Sale]{
		Key:    func(sale farm.Sale) string { return sale.CropID },
		Fields: []Field[farm.Sale]{saleAmount},
	}))
	allocated := AllocatedByCrop(ds.exps)

	rows := make([]CropPerformance, 0, len(ds.crops))
	for _, c := range ds.crops {
		rows = append(rows, scoreCrop(c, revenue[c.ID], allocated[c.ID], now))
	}
	if err := sortRows(rows, performanceSortKeys, order.By, order.Order, "progress"); err != nil {
		return PerformanceReport{}, err
	}
	summary := summarisePerformance(rows)
	for i := range rows {
		rows[i] = rows[i].rounded()
	}
	if summary.TopPerformer != nil {
		top := summary.TopPerformer.rounded()
		summary.TopPerformer = &top
	}
	return PerformanceReport{Crops: rows, Summary: summary}, nil
}

// scoreCrop computes unrounded schedule and financial metrics. Day counts are
// fractional; a crop without an expected harvest date has no harvest-based
// status.
func scoreCrop(c farm.Crop, sales Bucket, expenses float64, now time.Time) CropPerformance {
	var daysFromStart, daysToHarvest, cycle float64
	if !c.StartDate.IsZero() {
		daysFromStart = farm.DaysBetween(c.StartDate.Time, now)
	}
	if !c.ExpectedHarvest.IsZero() {
		daysToHarvest = farm.DaysBetween(now, c.ExpectedHarvest.Time)
		if !c.StartDate.IsZero() {
			cycle = farm.DaysBetween(c.StartDate.Time, c.ExpectedHarvest.Time)
		}
	}
	progress := float64(c.Progress)
	expected := ExpectedProgress(daysFromStart, cycle)
	variance := ProgressVariance(progress, expected)
	revenue := sales.Sum(fieldAmount)
	profit := revenue - expenses

	return CropPerformance{
		CropID:           c.ID,
		Name:             c.Name,
		Type:             string(c.Type),
		Variety:          c.Variety,
		CurrentStage:     c.CurrentStage,
		Progress:         progress,
		FieldSize:        c.FieldSize,
		Location:         c.Location,
		StartDate:        c.StartDate,
		ExpectedHarvest:  c.ExpectedHarvest,
		WhenToPluck:      c.WhenToPluck,
		DaysFromStart:    daysFromStart,
		DaysToHarvest:    daysToHarvest,
		TotalCycleDays:   cycle,
		ExpectedProgress: expected,
		ProgressVariance: variance,
		PerformanceScore: PerformanceScore(progress, variance, daysToHarvest),
		TotalRevenue:     revenue,
		TotalExpenses:    expenses,
		NetProfit:        profit,
		ProfitMargin:     ProfitMargin(revenue, expenses),
		ROI:              ROI(profit, expenses),
		TotalSales:       sales.Count,
		Status:           performanceStatus(c, daysToHarvest),
	}
}

// performanceStatus checks the harvest window before the stage, so a
// harvested crop whose expected date has passed still reports Overdue.
func performanceStatus(c farm.Crop, daysToHarvest float64) string {
	if !c.ExpectedHarvest.IsZero() {
		switch {
		case daysToHarvest < 0:
			return StatusOverdue
		case daysToHarvest <= dueSoonDays:
			return StatusDueSoon
		}
	}
	switch c.CurrentStage {
	case farm.StageHarvested:
		return StatusCompleted
	case farm.StageHarvesting:
		return StatusReady
	default:
		return StatusInProgress
	}
}

func summarisePerformance(rows []CropPerformance) PerformanceSummary {
	var sum PerformanceSummary
	var progress, score, positiveROI float64
	var positive int
	for i := range rows {
		r := rows[i]
		sum.TotalCrops++
		progress += r.Progress
		score += r.PerformanceScore
		sum.TotalRevenue += r.TotalRevenue
		sum.TotalExpenses += r.TotalExpenses
		if r.ROI > 0 {
			positiveROI += r.ROI
			positive++
		}
		switch r.Status {
		case StatusOverdue:
			sum.CropsOverdue++
		case StatusDueSoon:
			sum.CropsDueSoon++
		case StatusReady:
			sum.CropsReady++
		case StatusCompleted:
			sum.CropsCompleted++
		}
		if sum.TopPerformer == nil || r.PerformanceScore > sum.TopPerformer.PerformanceScore {
			top := r
			sum.TopPerformer = &top
		}
	}
	n := float64(sum.TotalCrops)
	sum.TotalProfit = Round2(sum.TotalRevenue - sum.TotalExpenses)
	sum.AvgProfitMargin = Round2(ProfitMargin(sum.TotalRevenue, sum.TotalExpenses))
	sum.AvgROI = Round2(positiveROI / math.Max(float64(positive), 1))
	if n > 0 {
		sum.AvgProgress = Round2(progress / n)
		sum.AvgPerformanceScore = Round2(score / n)
	}
	sum.TotalRevenue = Round2(sum.TotalRevenue)
	sum.TotalExpenses = Round2(sum.TotalExpenses)
	return sum
}

func (r CropPerformance) rounded() CropPerformance {
	r.DaysFromStart = math.Round(r.DaysFromStart)
	r.DaysToHarvest = math.Round(r.DaysToHarvest)
	r.TotalCycleDays = math.Round(r.TotalCycleDays)
	r.ExpectedProgress = Round2(r.ExpectedProgress)
	r.ProgressVariance = Round2(r.ProgressVariance)
	r.PerformanceScore = Round2(r.PerformanceScore)
	r.TotalRevenue = Round2(r.TotalRevenue)
	r.TotalExpenses = Round2(r.TotalExpenses)
	r.NetProfit = Round2(r.NetProfit)
	r.ProfitMargin = Round2(r.ProfitMargin)
	r.ROI = Round2(r.ROI)
	return r
}
