package notificationshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/notifications"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
	"talentreview/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireUser).Get("/notifications", h.handleList)
	r.With(middleware.RequireUser).Post("/notifications/{notificationID}/read", h.handleMarkRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	total, err := h.Service.Count(r.Context(), user.TenantID, user.UserID, unreadOnly)
	if err != nil {
		slog.Warn("notification count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), user.TenantID, user.UserID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}

	shared.SetTotal(w, total)
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), user.TenantID, user.UserID, notificationID); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to update notification", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}
