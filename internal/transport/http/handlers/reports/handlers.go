package reportshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/cycles"
	"talentreview/internal/domain/evaluations"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
)

type Handler struct {
	Evaluations *evaluations.Service
	Cycles      *cycles.Service
	Perms       middleware.PermissionStore
}

func NewHandler(evaluationsSvc *evaluations.Service, cyclesSvc *cycles.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Evaluations: evaluationsSvc, Cycles: cyclesSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/cycles/{cycleID}/nine-box", h.handleNineBox)
	r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/cycles/{cycleID}/summary", h.handleSummary)
}

// requireCycle answers 404 for unknown cycles so an empty grid always means
// a real cycle with no completed evaluations.
func (h *Handler) requireCycle(w http.ResponseWriter, r *http.Request, tenantID, cycleID string) bool {
	if _, err := h.Cycles.Get(r.Context(), tenantID, cycleID); err != nil {
		if errors.Is(err, cycles.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", middleware.GetRequestID(r.Context()))
			return false
		}
		slog.Warn("report cycle lookup failed", "cycleId", cycleID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) handleNineBox(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")
	if !h.requireCycle(w, r, user.TenantID, cycleID) {
		return
	}

	grid, err := h.Evaluations.NineBoxGrid(r.Context(), user.TenantID, cycleID)
	if err != nil {
		slog.Warn("nine-box grid failed", "cycleId", cycleID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, grid, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")
	if !h.requireCycle(w, r, user.TenantID, cycleID) {
		return
	}

	summary, err := h.Evaluations.Summary(r.Context(), user.TenantID, cycleID)
	if err != nil {
		slog.Warn("cycle summary failed", "cycleId", cycleID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}
