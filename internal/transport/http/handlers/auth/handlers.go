package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/auth"
	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/middleware"
	"talentreview/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequireUser).Get("/auth/me", h.HandleMe)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)), payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
			return
		}
		slog.Warn("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}
