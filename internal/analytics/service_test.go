package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/shared"
)

type fakeRepo struct {
	crops []farm.Crop
	sales []farm.Sale
	exps  []farm.Expenditure
	diags []farm.Diagnosis

	salesErr   error
	cropCalls  int
	salesCalls int
}

func (f *fakeRepo) ListCrops(ctx context.Context, q Query) ([]farm.Crop, error) {
	f.cropCalls++
	var out []farm.Crop
	for _, c := range f.crops {
		if c.OwnerID == q.OwnerID && q.Range.Contains(c.CreatedAt) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListSales(ctx context.Context, q Query) ([]farm.Sale, error) {
	f.salesCalls++
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	var out []farm.Sale
	for _, s := range f.sales {
		if s.OwnerID != q.OwnerID || !q.Range.Contains(s.CreatedAt) {
			continue
		}
		if q.CropID != "" && s.CropID != q.CropID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) ListExpenditures(ctx context.Context, q Query) ([]farm.Expenditure, error) {
	var out []farm.Expenditure
	for _, e := range f.exps {
		if e.OwnerID != q.OwnerID || !q.Range.Contains(e.CreatedAt) {
			continue
		}
		if q.CropID != "" && !allocatesTo(e, q.CropID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func allocatesTo(e farm.Expenditure, cropID string) bool {
	for _, a := range e.Allocations {
		if a.CropID == cropID {
			return true
		}
	}
	return false
}

func (f *fakeRepo) ListDiagnoses(ctx context.Context, q Query) ([]farm.Diagnosis, error) {
	var out []farm.Diagnosis
	for _, d := range f.diags {
		if d.OwnerID == q.OwnerID && q.Range.Contains(d.CreatedAt) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetCrop(ctx context.Context, ownerID, cropID string) (farm.Crop, error) {
	for _, c := range f.crops {
		if c.ID == cropID && c.OwnerID == ownerID {
			return c, nil
		}
	}
	return farm.Crop{}, shared.ErrNotFound
}

func date(y int, m time.Month, d int) farm.Date {
	return farm.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func fixtureRepo() *fakeRepo {
	return &fakeRepo{
		crops: []farm.Crop{
			{ID: "c1", OwnerID: "u1", Name: "Tomato", Type: farm.CropTypeVegetable, Variety: "Roma", FieldSize: "2 acres",
				CurrentStage: farm.StageGrowing, Progress: 40, StartDate: date(2024, 1, 1), ExpectedHarvest: date(2024, 5, 1), CreatedAt: at(2024, 1, 1)},
			{ID: "c2", OwnerID: "u1", Name: "Wheat", Type: farm.CropTypeGrain, Variety: "HD-2967", FieldSize: "3",
				CurrentStage: farm.StageHarvesting, Progress: 95, StartDate: date(2023, 11, 10), ExpectedHarvest: date(2024, 3, 20), CreatedAt: at(2023, 11, 10)},
			{ID: "c9", OwnerID: "u2", Name: "Rice", Type: farm.CropTypeGrain, FieldSize: "50", CurrentStage: farm.StageSowing, Progress: 5, CreatedAt: at(2024, 3, 1)},
		},
		sales: []farm.Sale{
			{ID: "s1", OwnerID: "u1", CropID: "c1", Quantity: "10 kg", SellingPrice: 20, TotalAmount: 200, PaymentStatus: farm.PaymentPaid, CreatedAt: at(2024, 2, 10)},
			{ID: "s2", OwnerID: "u1", CropID: "c1", Quantity: "5 kg", SellingPrice: 30, TotalAmount: 150, PaymentStatus: farm.PaymentPending, CreatedAt: at(2024, 3, 2)},
			{ID: "s3", OwnerID: "u1", CropID: "c2", Quantity: "100 kg", SellingPrice: 25, TotalAmount: 2500, PaymentStatus: farm.PaymentPaid, CreatedAt: at(2024, 3, 5)},
			{ID: "s4", OwnerID: "u1", CropID: "deleted", Quantity: "4 kg", SellingPrice: 10, TotalAmount: 40, PaymentStatus: farm.PaymentPaid, CreatedAt: at(2024, 3, 6)},
			{ID: "s9", OwnerID: "u2", CropID: "c9", Quantity: "1000 kg", SellingPrice: 10, TotalAmount: 9999, CreatedAt: at(2024, 3, 5)},
		},
		exps: []farm.Expenditure{
			{ID: "e1", OwnerID: "u1", Category: "Seeds", SubCategory: "Hybrid", Amount: 1000, PaymentMode: farm.PaymentModeCash, Frequency: farm.FrequencySeasonal,
				AllocationMethod: farm.AllocationFieldSize, CropsInvolved: []string{"c1", "c2"},
				Allocations: []farm.Allocation{{CropID: "c1", AllocatedAmount: 400}, {CropID: "c2", AllocatedAmount: 600}}, CreatedAt: at(2024, 1, 5)},
			{ID: "e2", OwnerID: "u1", Category: "Labour", SubCategory: "Harvest", Amount: 300, PaymentMode: farm.PaymentModeUPI, Frequency: farm.FrequencyOneTime,
				AllocationMethod: farm.AllocationManual, Allocations: []farm.Allocation{{CropID: "c2", AllocatedAmount: 200}}, CreatedAt: at(2024, 3, 1)},
			{ID: "e3", OwnerID: "u1", Category: "Fertilizer", SubCategory: "Urea", Amount: 150, PaymentMode: farm.PaymentModeCash, Frequency: farm.FrequencyMonthly,
				AllocationMethod: farm.AllocationManual, CreatedAt: at(2024, 2, 20)},
			{ID: "e9", OwnerID: "u2", Category: "Seeds", Amount: 5000, Allocations: []farm.Allocation{{CropID: "c9", AllocatedAmount: 5000}}, CreatedAt: at(2024, 3, 1)},
		},
		diags: []farm.Diagnosis{
			{ID: "d1", OwnerID: "u1", Type: farm.DiagnosisText, Crop: "Tomato", Severity: farm.SeverityMild, Status: farm.StatusResolved, Result: farm.DiagnosisResult{Confidence: 0.8}, CreatedAt: at(2024, 2, 1)},
			{ID: "d2", OwnerID: "u1", Type: farm.DiagnosisImage, Crop: "Tomato", Severity: farm.SeverityHigh, Status: farm.StatusInProgress, Result: farm.DiagnosisResult{Confidence: 0.6}, CreatedAt: at(2024, 3, 1)},
			{ID: "d3", OwnerID: "u1", Type: farm.DiagnosisText, Crop: "Wheat", Severity: farm.SeverityModerate, Status: farm.StatusTreated, Result: farm.DiagnosisResult{Confidence: 0.9}, CreatedAt: at(2024, 3, 2)},
			{ID: "d9", OwnerID: "u2", Type: farm.DiagnosisText, Crop: "Rice", Severity: farm.SeverityHigh, CreatedAt: at(2024, 3, 2)},
		},
	}
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, time.UTC)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) })
	return svc
}

func TestOverviewTotalsAreOwnerScoped(t *testing.T) {
	repo := fixtureRepo()
	svc := newTestService(repo)

	ov, err := svc.Overview(context.Background(), Filter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 2890.0, ov.TotalRevenue)
	assert.Equal(t, 1450.0, ov.TotalExpenditure)
	assert.Equal(t, 1440.0, ov.NetProfit)
	assert.Equal(t, 49.83, ov.ProfitMargin)
	assert.Equal(t, 4, ov.TotalSales)
	assert.Equal(t, 3, ov.TotalExpenses)
	assert.Equal(t, 2, ov.TotalCrops)
	assert.Equal(t, 67.5, ov.AverageProgress)
	assert.Equal(t, 5.0, ov.TotalFieldSize)
	assert.Equal(t, 1, ov.CropsReadyToHarvest)
	assert.Equal(t, 150.0, ov.PendingPayments)
	assert.Equal(t, 1, ov.PendingSales)

	require.Len(t, ov.CropsByStage, len(farm.Stages))
	assert.Equal(t, ShareEntry{Key: "Sowing", Count: 0, Percentage: 0}, ov.CropsByStage[0])
	assert.Equal(t, ShareEntry{Key: "Growing", Count: 1, Percentage: 50}, ov.CropsByStage[1])
	assert.Equal(t, ShareEntry{Key: "Harvesting", Count: 1, Percentage: 50}, ov.CropsByStage[3])
	assert.Equal(t, ShareEntry{Key: "Grain", Count: 1, Percentage: 50}, ov.CropsByType[1])
}

func TestOverviewWithNoActivityInRangeIsZero(t *testing.T) {
	svc := newTestService(fixtureRepo())
	ov, err := svc.Overview(context.Background(), Filter{OwnerID: "u1", Range: RangeInput{Preset: PresetLastYear}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ov.TotalRevenue)
	assert.Equal(t, 0.0, ov.TotalExpenditure)
	assert.Equal(t, 0.0, ov.ProfitMargin)
	assert.Equal(t, 2, ov.TotalCrops)

	empty := newTestService(&fakeRepo{})
	ov, err = empty.Overview(context.Background(), Filter{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ov.AverageProgress)
	assert.Equal(t, 0, ov.TotalCrops)
	assert.Equal(t, 0.0, ov.CropsByStage[0].Percentage)
}

func TestOverviewRejectsBadDate(t *testing.T) {
	repo := fixtureRepo()
	svc := newTestService(repo)
	_, err := svc.Overview(context.Background(), Filter{OwnerID: "u1", Range: RangeInput{StartDate: "yesterday-ish"}})
	require.ErrorIs(t, err, ErrInvalidDateFormat)
	assert.Equal(t, 0, repo.salesCalls)
}

func TestStoreFailureSurfacesAsAggregationFailure(t *testing.T) {
	boom := errors.New("connection reset")
	repo := fixtureRepo()
	repo.salesErr = boom
	svc := newTestService(repo)

	_, err := svc.Overview(context.Background(), Filter{OwnerID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAggregationFailure)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindAggregationFailure, KindOf(err))
}

func TestMonthlyRevenueHasTwelveZeroFilledMonths(t *testing.T) {
	svc := newTestService(fixtureRepo())
	points, err := svc.MonthlyRevenue(context.Background(), "u1", 2024)
	require.NoError(t, err)
	require.Len(t, points, 12)
	for i, p := range points {
		assert.Equal(t, i+1, p.MonthNumber)
	}
	assert.Equal(t, MonthlyPoint{Month: "Jan", MonthNumber: 1, Crops: 1, Expenditure: 1000}, points[0])
	assert.Equal(t, MonthlyPoint{Month: "Feb", MonthNumber: 2, Revenue: 200, Sales: 1, Expenditure: 150}, points[1])
	assert.Equal(t, MonthlyPoint{Month: "Mar", MonthNumber: 3, Revenue: 2690, Sales: 3, Expenditure: 300}, points[2])
	assert.Equal(t, MonthlyPoint{Month: "Dec", MonthNumber: 12}, points[11])

	empty, err := svc.MonthlyRevenue(context.Background(), "u1", 1999)
	require.NoError(t, err)
	assert.Len(t, empty, 12)
}

func TestCropProfitabilityUsesAllocatedShares(t *testing.T) {
	repo := fixtureRepo()
	svc := newTestService(repo)

	rows, err := svc.CropProfitability(context.Background(), Filter{OwnerID: "u1"}, SortInput{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Wheat", UnknownKey, "Tomato"}, []string{rows[0].Crop, rows[1].Crop, rows[2].Crop})

	wheat := rows[0]
	assert.Equal(t, 2500.0, wheat.Revenue)
	assert.Equal(t, 800.0, wheat.Expenses)
	assert.Equal(t, 1700.0, wheat.Profit)
	assert.Equal(t, 68.0, wheat.Margin)
	assert.Equal(t, 212.5, wheat.ROI)

	tomato := rows[2]
	assert.Equal(t, 350.0, tomato.Revenue)
	assert.Equal(t, 400.0, tomato.Expenses)
	assert.Equal(t, -14.29, tomato.Margin)
	assert.Equal(t, 15.0, tomato.Quantity)
	assert.Equal(t, 25.0, tomato.AvgPrice)
	assert.Equal(t, 20.0, tomato.MinPrice)
	assert.Equal(t, 30.0, tomato.MaxPrice)
	assert.Equal(t, 23.33, tomato.RevenuePerUnit)

	for _, r := range rows {
		if r.CropID == "" {
			continue
		}
		assert.InDelta(t, r.Revenue-AllocatedToCrop(repo.exps, r.CropID), r.Profit, 0.01, r.Crop)
	}
}

func TestCropProfitabilitySorting(t *testing.T) {
	svc := newTestService(fixtureRepo())
	rows, err := svc.CropProfitability(context.Background(), Filter{OwnerID: "u1"}, SortInput{By: "revenue", Order: SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{UnknownKey, "Tomato", "Wheat"}, []string{rows[0].Crop, rows[1].Crop, rows[2].Crop})

	_, err = svc.CropProfitability(context.Background(), Filter{OwnerID: "u1"}, SortInput{By: "colour"})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = svc.CropProfitability(context.Background(), Filter{OwnerID: "u1"}, SortInput{By: "profit", Order: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSalesDistribution(t *testing.T) {
	svc := newTestService(fixtureRepo())
	dist, err := svc.SalesDistribution(context.Background(), Filter{OwnerID: "u1"}, GroupByCrop)
	require.NoError(t, err)
	require.Len(t, dist.Slices, 3)
	assert.Equal(t, 2890.0, dist.TotalRevenue)
	assert.Equal(t, 4, dist.TotalSales)

	wheat := dist.Slices[0]
	assert.Equal(t, "c2", wheat.Key)
	assert.Equal(t, "Wheat", wheat.Name)
	assert.Equal(t, 86.51, wheat.RevenueShare)
	assert.Equal(t, 25.0, wheat.SalesShare)
	assert.Equal(t, distributionColors[0], wheat.Color)
	assert.Equal(t, UnknownKey, dist.Slices[2].Name)

	require.Len(t, dist.TopBySales, 3)
	assert.Equal(t, RankedEntry{Name: "Tomato", Value: 2}, dist.TopBySales[0])
	assert.Equal(t, RankedEntry{Name: "Wheat", Value: 100}, dist.TopByQuantity[0])

	byType, err := svc.SalesDistribution(context.Background(), Filter{OwnerID: "u1"}, GroupByType)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grain", "Vegetable", UnknownKey}, []string{byType.Slices[0].Name, byType.Slices[1].Name, byType.Slices[2].Name})

	_, err = svc.SalesDistribution(context.Background(), Filter{OwnerID: "u1"}, "region")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSeasonalRabiCrossesYearBoundary(t *testing.T) {
	svc := newTestService(fixtureRepo())
	perf, err := svc.Seasonal(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2023, perf.Year)
	require.Len(t, perf.Seasons, 3)
	assert.Equal(t, []Season{Kharif, Rabi, Zaid}, []Season{perf.Seasons[0].Season, perf.Seasons[1].Season, perf.Seasons[2].Season})

	rabi := perf.Seasons[1]
	assert.Equal(t, 2890.0, rabi.Revenue)
	assert.Equal(t, 1450.0, rabi.Expenses)
	assert.Equal(t, 1440.0, rabi.NetProfit)
	assert.Equal(t, 2, rabi.Crops)
	assert.Equal(t, 67.5, rabi.AvgYield)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), rabi.Start)
	assert.Equal(t, time.Date(2024, 4, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), rabi.End)
	assert.Equal(t, 0.0, perf.Seasons[0].Revenue)

	require.NotNil(t, perf.BestRevenueSeason)
	assert.Equal(t, Rabi, *perf.BestRevenueSeason)
	require.NotNil(t, perf.BestProfitSeason)
	assert.Equal(t, Rabi, *perf.BestProfitSeason)

	quiet, err := svc.Seasonal(context.Background(), "u1", 2021)
	require.NoError(t, err)
	assert.Nil(t, quiet.BestRevenueSeason)
	assert.Nil(t, quiet.BestProfitSeason)
}

func TestExpenditureAnalysis(t *testing.T) {
	svc := newTestService(fixtureRepo())
	report, err := svc.ExpenditureAnalysis(context.Background(), Filter{OwnerID: "u1"})
	require.NoError(t, err)

	require.Len(t, report.ByCategory, 3)
	assert.Equal(t, []string{"Seeds", "Labour", "Fertilizer"}, []string{report.ByCategory[0].Key, report.ByCategory[1].Key, report.ByCategory[2].Key})
	assert.Equal(t, "Hybrid", report.ByCategory[0].SubCategories[0].Key)
	require.NotNil(t, report.HighestCategory)
	assert.Equal(t, "Seeds", report.HighestCategory.Key)
	assert.Equal(t, "Fertilizer", report.LowestCategory.Key)

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{report.MonthlyTrend[0].Key, report.MonthlyTrend[1].Key, report.MonthlyTrend[2].Key})

	cash := report.ByPaymentMode[0]
	assert.Equal(t, Breakdown{Key: "Cash", Total: 1150, Count: 2, Avg: 575, Min: 150, Max: 1000}, cash)
	assert.Equal(t, "Seasonal", report.ByFrequency[0].Key)

	assert.Equal(t, 1450.0, report.TotalAmount)
	assert.Equal(t, 3, report.TotalCount)
	assert.Equal(t, 483.33, report.AverageAmount)

	month, err := svc.ExpenditureAnalysis(context.Background(), Filter{OwnerID: "u1", Range: RangeInput{Preset: PresetThisMonth}})
	require.NoError(t, err)
	assert.Equal(t, 300.0, month.TotalAmount)

	none, err := svc.ExpenditureAnalysis(context.Background(), Filter{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.Nil(t, none.HighestCategory)
	assert.Equal(t, 0.0, none.AverageAmount)
}

func TestCropFinancialSummary(t *testing.T) {
	svc := newTestService(fixtureRepo())
	ctx := context.Background()

	sum, err := svc.CropFinancialSummary(ctx, Filter{OwnerID: "u1"}, "c2", PageInput{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", sum.Crop.Name)
	assert.Equal(t, 2500.0, sum.TotalRevenue)
	assert.Equal(t, 800.0, sum.TotalExpenses)
	assert.Equal(t, 1700.0, sum.Profit)
	require.Len(t, sum.Expenses, 1)
	assert.Equal(t, 600.0, sum.Expenses[0].AllocatedAmount)
	assert.Equal(t, 2, sum.ExpensePagination.Total)
	assert.Equal(t, 2, sum.ExpensePagination.TotalPages)

	second, err := svc.CropFinancialSummary(ctx, Filter{OwnerID: "u1"}, "c2", PageInput{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, second.Expenses, 1)
	assert.Equal(t, "e2", second.Expenses[0].ID)
	assert.Equal(t, 200.0, second.Expenses[0].AllocatedAmount)
	assert.Empty(t, second.Sales)
	assert.Equal(t, 800.0, second.TotalExpenses)

	_, err = svc.CropFinancialSummary(ctx, Filter{OwnerID: "u1"}, "", PageInput{})
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = svc.CropFinancialSummary(ctx, Filter{OwnerID: "u1"}, "c9", PageInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CropFinancialSummary(ctx, Filter{OwnerID: "u1"}, "c2", PageInput{Limit: 500})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCropFinancialSummaryHugePageIsEmpty(t *testing.T) {
	svc := newTestService(fixtureRepo())
	sum, err := svc.CropFinancialSummary(context.Background(), Filter{OwnerID: "u1"}, "c2",
		PageInput{Page: math.MaxInt64 / 10 * 2, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, sum.Sales)
	assert.Empty(t, sum.Expenses)
	assert.Equal(t, 2, sum.ExpensePagination.Total)
	assert.Equal(t, 800.0, sum.TotalExpenses)
}

func TestCropPerformance(t *testing.T) {
	svc := newTestService(fixtureRepo())
	report, err := svc.CropPerformance(context.Background(), Filter{OwnerID: "u1"}, SortInput{})
	require.NoError(t, err)
	require.Len(t, report.Crops, 2)

	wheat, tomato := report.Crops[0], report.Crops[1]
	assert.Equal(t, "Wheat", wheat.Name)
	assert.Equal(t, StatusDueSoon, wheat.Status)
	assert.Equal(t, 5.0, wheat.DaysToHarvest)
	assert.Equal(t, 131.0, wheat.TotalCycleDays)
	assert.Equal(t, 212.5, wheat.ROI)

	assert.Equal(t, StatusInProgress, tomato.Status)
	assert.Equal(t, 121.0, tomato.TotalCycleDays)
	assert.Equal(t, 61.57, tomato.ExpectedProgress)
	assert.Equal(t, -21.57, tomato.ProgressVariance)
	assert.Equal(t, 16.0, tomato.PerformanceScore)

	s := report.Summary
	assert.Equal(t, 2, s.TotalCrops)
	assert.Equal(t, 67.5, s.AvgProgress)
	assert.Equal(t, 2850.0, s.TotalRevenue)
	assert.Equal(t, 1200.0, s.TotalExpenses)
	assert.Equal(t, 1650.0, s.TotalProfit)
	assert.Equal(t, 212.5, s.AvgROI)
	assert.Equal(t, 1, s.CropsDueSoon)
	require.NotNil(t, s.TopPerformer)
	assert.Equal(t, "c2", s.TopPerformer.CropID)

	byScore, err := svc.CropPerformance(context.Background(), Filter{OwnerID: "u1"}, SortInput{By: "performanceScore", Order: SortAsc})
	require.NoError(t, err)
	assert.Equal(t, "Tomato", byScore.Crops[0].Name)
}

// The harvest window is checked before the stage, so a harvested crop past its
// expected date reports Overdue rather than Completed.
func TestPerformanceStatusChecksHarvestWindowFirst(t *testing.T) {
	harvested := farm.Crop{CurrentStage: farm.StageHarvested, ExpectedHarvest: date(2024, 1, 1)}
	assert.Equal(t, StatusOverdue, performanceStatus(harvested, -10))
	assert.Equal(t, StatusDueSoon, performanceStatus(harvested, 7))
	assert.Equal(t, StatusCompleted, performanceStatus(harvested, 8))
	assert.Equal(t, StatusReady, performanceStatus(farm.Crop{CurrentStage: farm.StageHarvesting}, -3))
	assert.Equal(t, StatusInProgress, performanceStatus(farm.Crop{CurrentStage: farm.StageSowing}, 0))
}

func TestDiagnosisStats(t *testing.T) {
	svc := newTestService(fixtureRepo())
	stats, err := svc.DiagnosisStats(context.Background(), Filter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []CountEntry{{"Mild", 1}, {"High", 1}, {"Moderate", 1}}, stats.BySeverity)
	assert.Equal(t, []CountEntry{{"text", 2}, {"image", 1}}, stats.ByType)
	require.Len(t, stats.ByCrop, 2)
	assert.Equal(t, CropDiagnosisEntry{Crop: "Tomato", Count: 2, AvgConfidence: 0.7}, stats.ByCrop[0])
	assert.Equal(t, CropDiagnosisEntry{Crop: "Wheat", Count: 1, AvgConfidence: 0.9}, stats.ByCrop[1])
}

func TestReportsRequireOwner(t *testing.T) {
	svc := newTestService(fixtureRepo())
	_, err := svc.Overview(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrMissingParameter)
	_, err = svc.MonthlyRevenue(context.Background(), "", 2024)
	assert.ErrorIs(t, err, ErrMissingParameter)
}
