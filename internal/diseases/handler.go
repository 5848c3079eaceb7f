package diseases

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmledger/farmledger/internal/platform/httpx"
)

// Handler exposes the catalog as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes. They need no owner.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/diseases", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/filters", h.filters)
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.QueryInt(r, "page")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), ListRequest{
		Search:   q.Get("search"),
		Crop:     q.Get("crop"),
		Category: q.Get("category"),
		Severity: q.Get("severity"),
		State:    q.Get("state"),
		Season:   q.Get("season"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.fail(w, "list diseases", err)
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get disease", err)
		return
	}
	httpx.OK(w, d)
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.fail(w, "disease filters", err)
		return
	}
	httpx.OK(w, opts)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
