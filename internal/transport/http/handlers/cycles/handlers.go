package cycleshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/cycles"
	"talentreview/internal/platform/jobs"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
	"talentreview/internal/transport/http/shared"
)

// JobRunner runs a job inline and records it as a job run.
type JobRunner interface {
	RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error)
}

type Handler struct {
	Service *cycles.Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Jobs    JobRunner
}

func NewHandler(service *cycles.Service, perms middleware.PermissionStore, auditor shared.Auditor, runner JobRunner) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor, Jobs: runner}
}

type createCycleRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type validityResponse struct {
	CycleID   string        `json:"cycleId"`
	Status    cycles.Status `json:"status"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	IsValid   bool          `json:"isValid"`
	Message   string        `json:"message,omitempty"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermCyclesRead, h.Perms)
	manage := middleware.RequirePermission(auth.PermCyclesManage, h.Perms)

	r.With(read).Get("/cycles", h.handleList)
	r.With(manage).Post("/cycles", h.handleCreate)
	r.With(manage).Post("/cycles/close-expired", h.handleCloseExpired)
	r.With(read).Get("/cycles/{cycleID}", h.handleGet)
	r.With(read).Get("/cycles/{cycleID}/validity", h.handleValidity)
	r.With(manage).Post("/cycles/{cycleID}/open", h.handleOpen)
	r.With(manage).Post("/cycles/{cycleID}/close", h.handleClose)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	status := cycles.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "status", Reason: "must be draft, open or closed"}})
		return
	}
	list, err := h.Service.List(r.Context(), user.TenantID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("title", payload.Title, "is required")
	start, startOK := validator.Date("startDate", payload.StartDate)
	end, endOK := validator.Date("endDate", payload.EndDate)
	if startOK && endOK {
		validator.DateOrder("startDate", start, "endDate", end)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	cycle, err := h.Service.Create(r.Context(), user.TenantID, cycles.CreateInput{Title: payload.Title, StartDate: start, EndDate: end})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, user, audit.ActionCycleCreate, audit.EntityCycle, cycle.ID, nil, cycle)
	api.Created(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cycle, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidity(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cycle, validation, err := h.Service.Validity(r.Context(), user.TenantID, chi.URLParam(r, "cycleID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, validityResponse{
		CycleID:   cycle.ID,
		Status:    cycle.Status,
		StartDate: cycle.StartDate.Format(time.DateOnly),
		EndDate:   cycle.EndDate.Format(time.DateOnly),
		IsValid:   validation.IsValid,
		Message:   validation.Message,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionCycleOpen, h.Service.Open)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionCycleClose, h.Service.Close)
}

// handleCloseExpired runs the expired cycle sweep for the caller's tenant
// without waiting for the scheduler.
func (h *Handler) handleCloseExpired(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var closed int64
	run := func(ctx context.Context) (any, error) {
		n, err := h.Service.CloseExpired(ctx, user.TenantID)
		closed = n
		return map[string]any{"closed": n}, err
	}
	var err error
	if h.Jobs != nil {
		_, err = h.Jobs.RunNow(r.Context(), jobs.JobCloseExpiredCycles, user.TenantID, run)
	} else {
		_, err = run(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result := map[string]any{"closed": closed}
	if closed > 0 {
		shared.RecordAudit(r, h.Audit, user, audit.ActionCycleCloseExpired, audit.EntityCycle, "", nil, result)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, string, string) (cycles.Cycle, error)) {
	user, _ := middleware.GetUser(r.Context())

	cycleID := chi.URLParam(r, "cycleID")
	before, err := h.Service.Get(r.Context(), user.TenantID, cycleID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	after, err := apply(r.Context(), user.TenantID, cycleID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, user, action, audit.EntityCycle, cycleID, before, after)
	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, cycles.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", reqID)
	case errors.Is(err, cycles.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, cycles.ErrInvalidCycle):
		api.Fail(w, http.StatusBadRequest, "invalid_cycle", err.Error(), reqID)
	default:
		slog.Warn("cycle request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "cycle_failed", "cycle request failed", reqID)
	}
}
