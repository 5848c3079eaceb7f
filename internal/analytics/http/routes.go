package analytichttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

// MountRoutes registers analytics endpoints onto the router. Exports are
// rate limited per user.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export limit reached")
		}),
	)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/overview", h.handleOverview)
		r.Get("/revenue/monthly", h.handleMonthlyRevenue)
		r.Get("/crops/profitability", h.handleProfitability)
		r.Get("/crops/performance", h.handlePerformance)
		r.Get("/crops/financial-summary", h.handleFinancialSummary)
		r.Get("/sales/distribution", h.handleDistribution)
		r.Get("/seasonal", h.handleSeasonal)
		r.Get("/expenditure", h.handleExpenditure)
		r.Get("/diagnosis", h.handleDiagnosis)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/crops/profitability/export.csv", h.handleProfitabilityCSV)
			gr.Get("/crops/profitability/export.xlsx", h.handleProfitabilityXLSX)
			gr.Get("/revenue/monthly/export.csv", h.handleMonthlyRevenueCSV)
			gr.Get("/expenditure/export.csv", h.handleExpenditureCSV)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if owner := strings.TrimSpace(shared.OwnerFromContext(r.Context())); owner != "" {
		return "user:" + owner, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
