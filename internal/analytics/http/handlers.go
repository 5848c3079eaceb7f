package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/farmledger/farmledger/internal/analytics"
	"github.com/farmledger/farmledger/internal/analytics/export"
	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

const (
	requestTimeout  = 10 * time.Second
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportService is the report contract used by the handler.
type ReportService interface {
	Overview(ctx context.Context, f analytics.Filter) (analytics.Overview, error)
	MonthlyRevenue(ctx context.Context, ownerID string, year int) ([]analytics.MonthlyPoint, error)
	CropProfitability(ctx context.Context, f analytics.Filter, order analytics.SortInput) ([]analytics.CropProfit, error)
	SalesDistribution(ctx context.Context, f analytics.Filter, groupBy string) (analytics.SalesDistribution, error)
	Seasonal(ctx context.Context, ownerID string, year int) (analytics.SeasonalPerformance, error)
	ExpenditureAnalysis(ctx context.Context, f analytics.Filter) (analytics.ExpenditureAnalysis, error)
	CropFinancialSummary(ctx context.Context, f analytics.Filter, cropID string, page analytics.PageInput) (analytics.CropFinancialSummary, error)
	CropPerformance(ctx context.Context, f analytics.Filter, order analytics.SortInput) (analytics.PerformanceReport, error)
	DiagnosisStats(ctx context.Context, f analytics.Filter) (analytics.DiagnosisStats, error)
}

// Handler serves farm analytics reports as JSON, CSV and XLSX.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.Overview(ctx, filterFrom(r))
	h.respond(w, "overview", report, err)
}

func (h *Handler) handleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.respondError(w, "monthly revenue", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	points, err := h.service.MonthlyRevenue(ctx, shared.OwnerFromContext(r.Context()), year)
	h.respond(w, "monthly revenue", points, err)
}

func (h *Handler) handleProfitability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rows, err := h.service.CropProfitability(ctx, filterFrom(r), sortFrom(r))
	h.respond(w, "crop profitability", rows, err)
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	groupBy := strings.TrimSpace(r.URL.Query().Get("groupBy"))
	report, err := h.service.SalesDistribution(ctx, filterFrom(r), groupBy)
	h.respond(w, "sales distribution", report, err)
}

func (h *Handler) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.respondError(w, "seasonal", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.Seasonal(ctx, shared.OwnerFromContext(r.Context()), year)
	h.respond(w, "seasonal", report, err)
}

func (h *Handler) handleExpenditure(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.ExpenditureAnalysis(ctx, filterFrom(r))
	h.respond(w, "expenditure analysis", report, err)
}

func (h *Handler) handleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.respondError(w, "financial summary", err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.respondError(w, "financial summary", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	cropID := strings.TrimSpace(r.URL.Query().Get("cropId"))
	report, err := h.service.CropFinancialSummary(ctx, filterFrom(r), cropID, analytics.PageInput{Page: page, Limit: limit})
	h.respond(w, "financial summary", report, err)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.CropPerformance(ctx, filterFrom(r), sortFrom(r))
	h.respond(w, "crop performance", report, err)
}

func (h *Handler) handleDiagnosis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.DiagnosisStats(ctx, filterFrom(r))
	h.respond(w, "diagnosis stats", report, err)
}

func (h *Handler) handleProfitabilityCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rows, err := h.service.CropProfitability(ctx, filterFrom(r), sortFrom(r))
	if err != nil {
		h.respondError(w, "crop profitability", err)
		return
	}
	h.export(w, "profitability csv", csvContentType, h.filename("crop-profitability", "csv"), func(buf *bytes.Buffer) error {
		return export.WriteProfitabilityCSV(buf, rows)
	})
}

func (h *Handler) handleProfitabilityXLSX(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.respondError(w, "profitability workbook", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rows, err := h.service.CropProfitability(ctx, filterFrom(r), sortFrom(r))
	if err != nil {
		h.respondError(w, "crop profitability", err)
		return
	}
	monthly, err := h.service.MonthlyRevenue(ctx, shared.OwnerFromContext(r.Context()), year)
	if err != nil {
		h.respondError(w, "monthly revenue", err)
		return
	}
	h.export(w, "profitability xlsx", xlsxContentType, h.filename("crop-profitability", "xlsx"), func(buf *bytes.Buffer) error {
		return export.WriteProfitabilityXLSX(buf, rows, monthly)
	})
}

func (h *Handler) handleMonthlyRevenueCSV(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.respondError(w, "monthly revenue", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	points, err := h.service.MonthlyRevenue(ctx, shared.OwnerFromContext(r.Context()), year)
	if err != nil {
		h.respondError(w, "monthly revenue", err)
		return
	}
	h.export(w, "monthly revenue csv", csvContentType, h.filename("monthly-revenue", "csv"), func(buf *bytes.Buffer) error {
		return export.WriteMonthlyRevenueCSV(buf, points)
	})
}

func (h *Handler) handleExpenditureCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	analysis, err := h.service.ExpenditureAnalysis(ctx, filterFrom(r))
	if err != nil {
		h.respondError(w, "expenditure analysis", err)
		return
	}
	h.export(w, "expenditure csv", csvContentType, h.filename("expenditure", "csv"), func(buf *bytes.Buffer) error {
		return export.WriteExpenditureCSV(buf, analysis)
	})
}

// export renders into a pooled buffer so a failed write never reaches the
// client as a partial file.
func (h *Handler) export(w http.ResponseWriter, op, contentType, filename string, write func(*bytes.Buffer) error) {
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := write(buf); err != nil {
		h.respondError(w, "write "+op, err)
		return
	}
	h.stream(w, contentType, filename, buf.Bytes())
}

func (h *Handler) filename(base, ext string) string {
	return fmt.Sprintf("%s-%s.%s", base, h.now().Format("2006-01-02"), ext)
}

func (h *Handler) stream(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("stream export", slog.String("file", filename), slog.Any("error", err))
	}
}

func (h *Handler) respond(w http.ResponseWriter, op string, data any, err error) {
	if err != nil {
		h.respondError(w, op, err)
		return
	}
	httpx.OK(w, data)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	kind := analytics.KindOf(err)
	status := statusFor(kind)
	problem := httpx.ProblemDetail{
		Type:   string(kind),
		Title:  http.StatusText(status),
		Status: status,
	}
	var ae *analytics.Error
	if errors.As(err, &ae) {
		problem.Field = ae.Field
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("analytics "+op, slog.Any("error", err))
	} else {
		problem.Detail = err.Error()
	}
	httpx.WriteProblem(w, problem)
}

func statusFor(kind analytics.Kind) int {
	switch kind {
	case analytics.KindInvalidDateFormat, analytics.KindMissingParameter,
		analytics.KindInvalidParameter, analytics.KindAllocation:
		return http.StatusBadRequest
	case analytics.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func filterFrom(r *http.Request) analytics.Filter {
	q := r.URL.Query()
	return analytics.Filter{
		OwnerID: shared.OwnerFromContext(r.Context()),
		Range: analytics.RangeInput{
			Preset:    strings.TrimSpace(q.Get("preset")),
			StartDate: strings.TrimSpace(q.Get("startDate")),
			EndDate:   strings.TrimSpace(q.Get("endDate")),
		},
	}
}

func sortFrom(r *http.Request) analytics.SortInput {
	q := r.URL.Query()
	return analytics.SortInput{
		By:    strings.TrimSpace(q.Get("sortBy")),
		Order: strings.TrimSpace(q.Get("sortOrder")),
	}
}

// queryInt reads an optional integer parameter; a malformed value is an
// InvalidParameter error naming the field.
func queryInt(r *http.Request, name string) (int, error) {
	v, err := httpx.QueryInt(r, name)
	if err != nil {
		return 0, analytics.InvalidParameter(name, r.URL.Query().Get(name))
	}
	return v, nil
}
