package competencieshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/competencies"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
)

type Handler struct {
	Service *competencies.Service
}

func NewHandler(service *competencies.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireUser).Get("/competencies", h.handleForm)
}

// handleForm returns the unscored form the UI renders for any evaluation type.
func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	form, err := h.Service.Form(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "competency_list_failed", "failed to load competencies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}
