package notifications

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farmledger/farmledger/internal/platform/httpx"
	"github.com/farmledger/farmledger/internal/shared"
)

// Handler exposes the notification inbox as JSON.
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

// MountRoutes registers inbox routes. Static paths are registered before
// the {id} routes they would otherwise shadow.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/unread-count", h.unreadCount)
		r.Patch("/mark-all-read", h.markAllRead)
		r.Delete("/read/all", h.deleteRead)
		r.Get("/preferences", h.preferences)
		r.Put("/preferences", h.updatePreferences)
		r.Post("/test", h.sendTest)
		r.Post("/harvest-reminder/{cropID}", h.harvestReminder)
		r.Patch("/{id}/read", h.markRead)
		r.Delete("/{id}", h.delete)
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
	req := ListRequest{
		Page:     page,
		Limit:    limit,
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Priority: q.Get("priority"),
	}
	if raw := strings.TrimSpace(q.Get("isRead")); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("isRead %q is not a boolean: %w", raw, shared.ErrValidation))
			return
		}
		req.IsRead = &read
	}
	result, err := h.service.List(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "list notifications", err)
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "unread count", err)
		return
	}
	httpx.OK(w, map[string]int{"count": n})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode notification: %v: %w", err, shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	n, err := h.service.Create(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "create notification", err)
		return
	}
	httpx.Created(w, n)
}

func (h *Handler) sendTest(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.SendTest(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "test notification", err)
		return
	}
	httpx.Created(w, n)
}

func (h *Handler) harvestReminder(w http.ResponseWriter, r *http.Request) {
	cropID := chi.URLParam(r, "cropID")
	if err := h.service.RequestHarvestReminder(r.Context(), shared.OwnerFromContext(r.Context()), cropID); err != nil {
		h.fail(w, "request harvest reminder", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, httpx.Envelope{Success: true, Data: map[string]string{"cropId": cropID}})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkRead(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "mark notification read", err)
		return
	}
	httpx.OK(w, n)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "mark all notifications read", err)
		return
	}
	httpx.OK(w, map[string]int64{"modifiedCount": n})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteRead(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "delete read notifications", err)
		return
	}
	httpx.OK(w, map[string]int64{"deletedCount": n})
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Preferences(r.Context(), shared.OwnerFromContext(r.Context()))
	if err != nil {
		h.fail(w, "notification preferences", err)
		return
	}
	httpx.OK(w, prefs)
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesUpdate
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode preferences: %v: %w", err, shared.ErrValidation))
		return
	}
	prefs, err := h.service.UpdatePreferences(r.Context(), shared.OwnerFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, "update notification preferences", err)
		return
	}
	httpx.OK(w, prefs)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
