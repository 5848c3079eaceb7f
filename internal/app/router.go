package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/farmledger/farmledger/internal/analytics/http"
	"github.com/farmledger/farmledger/internal/auth"
	"github.com/farmledger/farmledger/internal/crops"
	"github.com/farmledger/farmledger/internal/diagnoses"
	"github.com/farmledger/farmledger/internal/diseases"
	"github.com/farmledger/farmledger/internal/expenditures"
	"github.com/farmledger/farmledger/internal/notifications"
	"github.com/farmledger/farmledger/internal/observability"
	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/sales"
	"github.com/farmledger/farmledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthService         *auth.Service
	AuthHandler         *auth.Handler
	CropsHandler        *crops.Handler
	SalesHandler        *sales.Handler
	ExpendituresHandler *expenditures.Handler
	DiagnosesHandler    *diagnoses.Handler
	NotificationHandler *notifications.Handler
	DiseasesHandler     *diseases.Handler
	AnalyticsHandler    *analytichttp.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api except
// registration, login and the disease catalog requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.DiseasesHandler != nil {
			params.DiseasesHandler.MountRoutes(r)
		}
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.AuthService, params.Logger))
			if params.AuthHandler != nil {
				params.AuthHandler.MountProtectedRoutes(r)
			}
			if params.CropsHandler != nil {
				params.CropsHandler.MountRoutes(r)
			}
			if params.SalesHandler != nil {
				params.SalesHandler.MountRoutes(r)
			}
			if params.ExpendituresHandler != nil {
				params.ExpendituresHandler.MountRoutes(r)
			}
			if params.DiagnosesHandler != nil {
				params.DiagnosesHandler.MountRoutes(r)
			}
			if params.NotificationHandler != nil {
				params.NotificationHandler.MountRoutes(r)
			}
			if params.AnalyticsHandler != nil {
				params.AnalyticsHandler.MountRoutes(r)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})

	return r
}
