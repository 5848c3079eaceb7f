package analytichttp

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farmledger/farmledger/internal/analytics"
	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

type stubService struct {
	err        error
	lastFilter analytics.Filter
	lastSort   analytics.SortInput
	lastYear   int
	lastCrop   string
	lastPage   analytics.PageInput
	lastGroup  string
	profit     []analytics.CropProfit
	spend      analytics.ExpenditureAnalysis
}

func (s *stubService) Overview(ctx context.Context, f analytics.Filter) (analytics.Overview, error) {
	s.lastFilter = f
	return analytics.Overview{TotalRevenue: 1200, TotalSales: 3}, s.err
}

func (s *stubService) MonthlyRevenue(ctx context.Context, ownerID string, year int) ([]analytics.MonthlyPoint, error) {
	s.lastFilter.OwnerID = ownerID
	s.lastYear = year
	return []analytics.MonthlyPoint{{Month: "Jan", MonthNumber: 1, Revenue: 10}}, s.err
}

func (s *stubService) CropProfitability(ctx context.Context, f analytics.Filter, order analytics.SortInput) ([]analytics.CropProfit, error) {
	s.lastFilter, s.lastSort = f, order
	return s.profit, s.err
}

func (s *stubService) SalesDistribution(ctx context.Context, f analytics.Filter, groupBy string) (analytics.SalesDistribution, error) {
	s.lastFilter, s.lastGroup = f, groupBy
	return analytics.SalesDistribution{GroupBy: groupBy}, s.err
}

func (s *stubService) Seasonal(ctx context.Context, ownerID string, year int) (analytics.SeasonalPerformance, error) {
	s.lastYear = year
	return analytics.SeasonalPerformance{}, s.err
}

func (s *stubService) ExpenditureAnalysis(ctx context.Context, f analytics.Filter) (analytics.ExpenditureAnalysis, error) {
	s.lastFilter = f
	return s.spend, s.err
}

func (s *stubService) CropFinancialSummary(ctx context.Context, f analytics.Filter, cropID string, page analytics.PageInput) (analytics.CropFinancialSummary, error) {
	s.lastFilter, s.lastCrop, s.lastPage = f, cropID, page
	return analytics.CropFinancialSummary{}, s.err
}

func (s *stubService) CropPerformance(ctx context.Context, f analytics.Filter, order analytics.SortInput) (analytics.PerformanceReport, error) {
	s.lastFilter, s.lastSort = f, order
	return analytics.PerformanceReport{}, s.err
}

func (s *stubService) DiagnosisStats(ctx context.Context, f analytics.Filter) (analytics.DiagnosisStats, error) {
	s.lastFilter = f
	return analytics.DiagnosisStats{}, s.err
}

func newTestRouter(t *testing.T, service *stubService) http.Handler {
	t.Helper()
	handler := NewHandler(nil, service)
	handler.WithNow(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithOwner(r.Context(), "u1")))
		})
	})
	handler.MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestOverviewPassesOwnerAndRange(t *testing.T) {
	service := &stubService{}
	rr := do(t, newTestRouter(t, service), "/analytics/overview?preset=thisMonth&startDate=2024-01-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := analytics.Filter{OwnerID: "u1", Range: analytics.RangeInput{Preset: "thisMonth", StartDate: "2024-01-01"}}
	if service.lastFilter != want {
		t.Fatalf("unexpected filter %+v", service.lastFilter)
	}
	var body struct {
		Success bool               `json:"success"`
		Data    analytics.Overview `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.TotalRevenue != 1200 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestQueryParametersReachService(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(t, service)

	do(t, router, "/analytics/crops/profitability?sortBy=roi&sortOrder=asc")
	if service.lastSort != (analytics.SortInput{By: "roi", Order: "asc"}) {
		t.Fatalf("unexpected sort %+v", service.lastSort)
	}
	do(t, router, "/analytics/revenue/monthly?year=2023")
	if service.lastYear != 2023 {
		t.Fatalf("expected year 2023, got %d", service.lastYear)
	}
	do(t, router, "/analytics/sales/distribution?groupBy=variety")
	if service.lastGroup != "variety" {
		t.Fatalf("expected variety grouping, got %q", service.lastGroup)
	}
	do(t, router, "/analytics/crops/financial-summary?cropId=c1&page=2&limit=5")
	if service.lastCrop != "c1" || service.lastPage != (analytics.PageInput{Page: 2, Limit: 5}) {
		t.Fatalf("unexpected summary input %q %+v", service.lastCrop, service.lastPage)
	}
}

func TestNonNumericYearIsBadRequest(t *testing.T) {
	rr := do(t, newTestRouter(t, &stubService{}), "/analytics/seasonal?year=abc")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var problem httpx.ProblemDetail
	if err := json.NewDecoder(rr.Body).Decode(&problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Type != string(analytics.KindInvalidParameter) || problem.Field != "year" {
		t.Fatalf("unexpected problem %+v", problem)
	}
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&analytics.Error{Kind: analytics.KindInvalidDateFormat, Field: "startDate"}, http.StatusBadRequest},
		{&analytics.Error{Kind: analytics.KindMissingParameter, Field: "cropId"}, http.StatusBadRequest},
		{&analytics.Error{Kind: analytics.KindAllocation}, http.StatusBadRequest},
		{&analytics.Error{Kind: analytics.KindNotFound}, http.StatusNotFound},
		{&analytics.Error{Kind: analytics.KindAggregationFailure, Err: errors.New("db down")}, http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := do(t, newTestRouter(t, &stubService{err: tc.err}), "/analytics/expenditure")
		if rr.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rr.Code)
		}
		if tc.status == http.StatusInternalServerError && strings.Contains(rr.Body.String(), "db down") {
			t.Fatalf("internal cause leaked: %s", rr.Body.String())
		}
	}
}

func TestProfitabilityCSVExport(t *testing.T) {
	service := &stubService{profit: []analytics.CropProfit{{Crop: "Wheat", Revenue: 1200, Sales: 2}}}
	rr := do(t, newTestRouter(t, service), "/analytics/crops/profitability/export.csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "crop-profitability-2024-03-15.csv") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	if len(records) != 2 || records[1][0] != "Wheat" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestProfitabilityXLSXExport(t *testing.T) {
	service := &stubService{profit: []analytics.CropProfit{{Crop: "Wheat"}}}
	rr := do(t, newTestRouter(t, service), "/analytics/crops/profitability/export.xlsx?year=2024")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip payload")
	}
	if service.lastYear != 2024 {
		t.Fatalf("expected monthly sheet for 2024, got %d", service.lastYear)
	}
}

func TestExportIsRateLimited(t *testing.T) {
	router := newTestRouter(t, &stubService{})
	var last int
	for i := 0; i < 11; i++ {
		last = do(t, router, "/analytics/crops/profitability/export.csv").Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last)
	}
}

func TestMonthlyRevenueCSVExport(t *testing.T) {
	service := &stubService{}
	rr := do(t, newTestRouter(t, service), "/analytics/revenue/monthly/export.csv?year=2023")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "monthly-revenue-2024-03-15.csv") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if service.lastYear != 2023 || service.lastFilter.OwnerID != "u1" {
		t.Fatalf("unexpected service input year=%d owner=%q", service.lastYear, service.lastFilter.OwnerID)
	}
	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	if len(records) != 2 || records[1][0] != "Jan" || records[1][1] != "10.00" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestMonthlyRevenueCSVRejectsNonNumericYear(t *testing.T) {
	rr := do(t, newTestRouter(t, &stubService{}), "/analytics/revenue/monthly/export.csv?year=next")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestExpenditureCSVExport(t *testing.T) {
	service := &stubService{spend: analytics.ExpenditureAnalysis{
		ByCategory: []analytics.CategoryBreakdown{{
			Breakdown:     analytics.Breakdown{Key: "Fertilizer", Total: 900, Count: 2, Avg: 450, Min: 300, Max: 600},
			SubCategories: []analytics.Breakdown{{Key: "Urea", Total: 600, Count: 1, Avg: 600, Min: 600, Max: 600}},
		}},
	}}
	rr := do(t, newTestRouter(t, service), "/analytics/expenditure/export.csv?preset=thisYear")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if service.lastFilter.Range.Preset != "thisYear" {
		t.Fatalf("range not forwarded: %+v", service.lastFilter.Range)
	}
	records, err := csv.NewReader(bytes.NewReader(rr.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	if len(records) != 3 || records[1][0] != "Fertilizer" || records[2][1] != "Urea" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestExpenditureCSVPropagatesServiceError(t *testing.T) {
	service := &stubService{err: &analytics.Error{Kind: analytics.KindInvalidDateFormat, Field: "startDate"}}
	rr := do(t, newTestRouter(t, service), "/analytics/expenditure/export.csv?startDate=bad")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAllExportsShareRateLimit(t *testing.T) {
	router := newTestRouter(t, &stubService{})
	for i := 0; i < 10; i++ {
		do(t, router, "/analytics/expenditure/export.csv")
	}
	if code := do(t, router, "/analytics/revenue/monthly/export.csv").Code; code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", code)
	}
}

func TestNonNumericPageIsBadRequest(t *testing.T) {
	rr := do(t, newTestRouter(t, &stubService{}), "/analytics/crops/financial-summary?cropId=c1&page=two")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var problem httpx.ProblemDetail
	if err := json.NewDecoder(rr.Body).Decode(&problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Type != string(analytics.KindInvalidParameter) || problem.Field != "page" {
		t.Fatalf("unexpected problem %+v", problem)
	}
}
