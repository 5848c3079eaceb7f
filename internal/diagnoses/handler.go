package diagnoses

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

// Handler exposes diagnosis endpoints as JSON.
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

// MountRoutes registers diagnosis routes. The /history routes serve clients
// that post list filters as a JSON body.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/diagnoses", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.record)
		r.Get("/sessions/{sessionID}", h.session)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	r.Route("/history", func(r chi.Router) {
		r.Post("/", h.listBody)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode diagnosis: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	d, err := h.service.Record(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "record diagnosis", err)
		return
	}
	httpx.Created(w, d)
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
	q := r.URL.Query()
	h.respondList(w, r, ListRequest{
		Type:      q.Get("type"),
		Crop:      q.Get("crop"),
		SessionID: q.Get("sessionId"),
		Status:    q.Get("status"),
		Limit:     limit,
		Skip:      skip,
	})
}

func (h *Handler) listBody(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode filters: %v: %w", err, shared.ErrValidation))
		return
	}
	h.respondList(w, r, req)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, req ListRequest) {
	diags, err := h.service.List(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "list diagnoses", err)
		return
	}
	httpx.OK(w, diags)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	diags, err := h.service.Session(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, "session history", err)
		return
	}
	httpx.OK(w, diags)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get diagnosis", err)
		return
	}
	httpx.OK(w, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode diagnosis: %v: %w", err, shared.ErrValidation))
		return
	}
	d, err := h.service.Update(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, "update diagnosis", err)
		return
	}
	httpx.OK(w, d)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete diagnosis", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
