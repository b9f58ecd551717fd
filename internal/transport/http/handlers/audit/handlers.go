package audithandler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
	"talentreview/internal/transport/http/shared"
)

const exportLimit = 10000

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/events", h.handleListEvents)
	r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/events/export", h.handleExportEvents)
}

func filterFromQuery(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		ActorUser:  q.Get("actorUserId"),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	filter := filterFromQuery(r)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"
	total, err := h.Service.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		slog.Warn("audit count failed", "err", err)
	}

	events, err := h.Service.List(r.Context(), user.TenantID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}

	shared.SetTotal(w, total)
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	events, err := h.Service.List(r.Context(), user.TenantID, filterFromQuery(r), false, exportLimit, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		row := []string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
