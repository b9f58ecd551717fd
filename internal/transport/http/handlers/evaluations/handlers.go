package evaluationshandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/cycles"
	"talentreview/internal/domain/evaluations"
	"talentreview/internal/platform/requestctx"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
	"talentreview/internal/transport/http/shared"
)

var typePermissions = map[evaluations.Type]string{
	evaluations.TypeSelf:      auth.PermEvaluationSelf,
	evaluations.TypeLeader:    auth.PermEvaluationLead,
	evaluations.TypeConsensus: auth.PermEvaluationConsensus,
}

type Handler struct {
	Service *evaluations.Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service *evaluations.Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)

	r.With(middleware.RequireUser).Post("/evaluations/score", h.handleScore)
	r.With(middleware.RequireUser).Put("/evaluations/draft", h.handleDraft)
	r.With(middleware.RequireUser).Post("/evaluations/submit", h.handleSubmit)
	r.With(read).Get("/evaluations", h.handleList)
	r.With(read).Get("/evaluations/{evaluationID}", h.handleGet)
	r.With(read).Get("/evaluations/{evaluationID}/pdf", h.handlePDF)
	r.With(read).Get("/cycles/{cycleID}/employees/{employeeID}/comparison", h.handleCompare)
}

func actorFrom(user auth.UserContext) evaluations.Actor {
	return evaluations.Actor{UserID: user.UserID, EmployeeID: user.EmployeeID, IsHR: user.IsHR()}
}

// auditView is the compact form of an evaluation kept in the audit trail.
func auditView(ev evaluations.Evaluation) map[string]any {
	view := map[string]any{
		"cycleId":          ev.CycleID,
		"employeeId":       ev.EmployeeID,
		"type":             ev.Type,
		"status":           ev.Status,
		"final":            ev.Scores.Final,
		"performanceLabel": ev.PerformanceLabel,
	}
	if ev.NineBox != nil {
		view["nineBox"] = ev.NineBox.Position
	}
	return view
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var payload evaluations.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Type != "" && !payload.Type.Valid() {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "type", Reason: "must be self, leader or consensus"}})
		return
	}
	if payload.Type != "" && !payload.Type.RatesPotential() {
		payload.Potential = nil
	}

	ev, err := evaluations.Preview(payload)
	if err != nil {
		h.fail(w, r, err, ev)
		return
	}
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, false)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, true)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, submit bool) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload evaluations.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	validator := shared.NewValidator()
	validator.UUID("cycleId", payload.CycleID)
	validator.UUID("employeeId", payload.EmployeeID)
	validator.Required("type", string(payload.Type), "is required")
	validator.Enum("type", string(payload.Type), []string{string(evaluations.TypeSelf), string(evaluations.TypeLeader), string(evaluations.TypeConsensus)}, "must be self, leader or consensus")
	if validator.Reject(w, reqID) {
		return
	}
	payload.Type = evaluations.Type(strings.ToLower(strings.TrimSpace(string(payload.Type))))

	allowed, err := h.Perms.HasPermission(r.Context(), user.RoleID, typePermissions[payload.Type])
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	actor := actorFrom(user)
	var ev evaluations.Evaluation
	action := audit.ActionEvaluationDraft
	if submit {
		action = audit.ActionEvaluationSubmit
		ev, err = h.Service.Submit(r.Context(), user.TenantID, actor, payload)
	} else {
		ev, err = h.Service.SaveDraft(r.Context(), user.TenantID, actor, payload)
	}
	if err != nil {
		var gateErr *cycles.ValidationError
		if errors.As(err, &gateErr) {
			shared.RecordAudit(r, h.Audit, user, audit.ActionEvaluationRejected, audit.EntityEvaluation, "", nil, map[string]any{
				"cycleId":    payload.CycleID,
				"employeeId": payload.EmployeeID,
				"type":       payload.Type,
				"reason":     gateErr.Message,
			})
		}
		h.fail(w, r, err, ev)
		return
	}

	shared.RecordAudit(r, h.Audit, user, action, audit.EntityEvaluation, ev.ID, nil, auditView(ev))
	api.Success(w, ev, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	q := r.URL.Query()
	filter := evaluations.Filter{
		CycleID:    strings.TrimSpace(q.Get("cycleId")),
		EmployeeID: strings.TrimSpace(q.Get("employeeId")),
		Type:       evaluations.Type(strings.TrimSpace(q.Get("type"))),
		Status:     evaluations.Status(strings.TrimSpace(q.Get("status"))),
	}
	validator := shared.NewValidator()
	if filter.CycleID != "" {
		validator.UUID("cycleId", filter.CycleID)
	}
	if filter.EmployeeID != "" {
		validator.UUID("employeeId", filter.EmployeeID)
	}
	validator.Enum("type", string(filter.Type), []string{string(evaluations.TypeSelf), string(evaluations.TypeLeader), string(evaluations.TypeConsensus)}, "must be self, leader or consensus")
	validator.Enum("status", string(filter.Status), []string{string(evaluations.StatusInProgress), string(evaluations.StatusCompleted)}, "must be in-progress or completed")
	if validator.Reject(w, reqID) {
		return
	}

	actor := actorFrom(user)
	if !actor.IsHR {
		if filter.EmployeeID == "" {
			filter.EmployeeID = user.EmployeeID
		}
		if !h.authorizeView(w, r, actor, filter.EmployeeID) {
			return
		}
	}

	total, err := h.Service.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		requestctx.Logger(r.Context()).Warn("evaluation count failed", "err", err)
	}

	page := shared.ParsePagination(r, 100, 500)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	list, err := h.Service.List(r.Context(), user.TenantID, filter)
	if err != nil {
		requestctx.Logger(r.Context()).Warn("evaluation list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", reqID)
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, list, reqID)
}

// loadVisible fetches an evaluation and checks the caller may read it. It
// writes the failure response itself and reports whether to continue.
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (evaluations.Evaluation, bool) {
	user, _ := middleware.GetUser(r.Context())

	ev, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "evaluationID"))
	if err != nil {
		h.fail(w, r, err, evaluations.Evaluation{})
		return evaluations.Evaluation{}, false
	}
	if !h.authorizeView(w, r, actorFrom(user), ev.EmployeeID) {
		return evaluations.Evaluation{}, false
	}
	return ev, true
}

func (h *Handler) authorizeView(w http.ResponseWriter, r *http.Request, actor evaluations.Actor, employeeID string) bool {
	user, _ := middleware.GetUser(r.Context())
	ok, err := h.Service.CanView(r.Context(), user.TenantID, actor, employeeID)
	if err != nil {
		requestctx.Logger(r.Context()).Warn("evaluation visibility check failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", middleware.GetRequestID(r.Context()))
		return false
	}
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this employee", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := evaluations.WritePDF(&buf, ev); err != nil {
		requestctx.Logger(r.Context()).Warn("evaluation pdf failed", "evaluationId", ev.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=evaluation-%s.pdf", ev.ID))
	if _, err := w.Write(buf.Bytes()); err != nil {
		requestctx.Logger(r.Context()).Warn("evaluation pdf write failed", "err", err)
	}
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	cycleID := chi.URLParam(r, "cycleID")
	employeeID := chi.URLParam(r, "employeeID")
	validator := shared.NewValidator()
	validator.UUID("cycleId", cycleID)
	validator.UUID("employeeId", employeeID)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if !h.authorizeView(w, r, actorFrom(user), employeeID) {
		return
	}

	comparison, err := h.Service.Compare(r.Context(), user.TenantID, cycleID, employeeID)
	if err != nil {
		h.fail(w, r, err, evaluations.Evaluation{})
		return
	}
	api.Success(w, comparison, middleware.GetRequestID(r.Context()))
}

// fail maps domain errors to responses. ev carries the partially computed
// evaluation for incomplete submissions.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, ev evaluations.Evaluation) {
	reqID := middleware.GetRequestID(r.Context())
	var gateErr *cycles.ValidationError
	switch {
	case errors.As(err, &gateErr):
		api.Fail(w, http.StatusConflict, "cycle_not_writable", gateErr.Message, reqID)
	case errors.Is(err, evaluations.ErrIncomplete):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "evaluation_incomplete", "every criterion must be scored before submitting", map[string]any{
			"progress": ev.Progress,
			"scores":   ev.Scores,
		}, reqID)
	case errors.Is(err, evaluations.ErrEvaluationCompleted):
		api.Fail(w, http.StatusConflict, "evaluation_completed", "evaluation already submitted", reqID)
	case errors.Is(err, evaluations.ErrInvalidRating):
		api.Fail(w, http.StatusBadRequest, "invalid_rating", err.Error(), reqID)
	case errors.Is(err, evaluations.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, evaluations.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, evaluations.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", reqID)
	case errors.Is(err, cycles.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", reqID)
	default:
		requestctx.Logger(r.Context()).Warn("evaluation request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "evaluation_failed", "evaluation request failed", reqID)
	}
}
