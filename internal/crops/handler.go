package crops

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

// Handler exposes crop endpoints as JSON.
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

// MountRoutes registers crop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/crops", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/due-for-harvest", h.dueForHarvest)
		r.Get("/calendar", h.calendar)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCropRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode crop: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	crop, err := h.service.Create(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "create crop", err)
		return
	}
	httpx.Created(w, crop)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	skip, err := httpx.QueryInt(r, "skip")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	crops, err := h.service.List(r.Context(), shared.OwnerFromContext(r.Context()), ListRequest{Limit: limit, Skip: skip})
	if err != nil {
		h.fail(w, "list crops", err)
		return
	}
	httpx.OK(w, crops)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	crop, err := h.service.Get(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get crop", err)
		return
	}
	httpx.OK(w, crop)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCropRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode crop: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	crop, err := h.service.Update(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, "update crop", err)
		return
	}
	httpx.OK(w, crop)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete crop", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dueForHarvest(w http.ResponseWriter, r *http.Request) {
	days, err := httpx.QueryInt(r, "days")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	crops, err := h.service.DueForHarvest(r.Context(), shared.OwnerFromContext(r.Context()), days)
	if err != nil {
		h.fail(w, "crops due for harvest", err)
		return
	}
	httpx.OK(w, crops)
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	month, err := httpx.QueryInt(r, "month")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	year, err := httpx.QueryInt(r, "year")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if month == 0 || year == 0 {
		now := h.service.now().In(h.service.loc)
		if month == 0 {
			month = int(now.Month())
		}
		if year == 0 {
			year = now.Year()
		}
	}
	cal, err := h.service.Calendar(r.Context(), shared.OwnerFromContext(r.Context()), month, year)
	if err != nil {
		h.fail(w, "harvest calendar", err)
		return
	}
	httpx.OK(w, cal)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
