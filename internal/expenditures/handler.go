package expenditures

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

// Handler exposes expenditure endpoints as JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers expenditure routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/expenditures", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/categories", h.categories)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenditureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode expenditure: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	exp, err := h.service.Create(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "create expenditure", err)
		return
	}
	httpx.Created(w, exp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := farm.ParseDate(q.Get("date"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%v: %w", err, shared.ErrValidation))
		return
	}
	exps, err := h.service.List(r.Context(), shared.OwnerFromContext(r.Context()), ListRequest{
		Category:    q.Get("category"),
		Frequency:   q.Get("frequency"),
		PaymentMode: q.Get("paymentMode"),
		CropID:      q.Get("cropId"),
		ExpenseDate: date,
	})
	if err != nil {
		h.fail(w, "list expenditures", err)
		return
	}
	httpx.OK(w, exps)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list categories", err)
		return
	}
	httpx.OK(w, categories)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	exp, err := h.service.Get(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get expenditure", err)
		return
	}
	httpx.OK(w, exp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenditureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode expenditure: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	exp, err := h.service.Update(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, "update expenditure", err)
		return
	}
	httpx.OK(w, exp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete expenditure", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
