package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox-go/internal/middleware"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, bodyErrorStatus(err), errorResponse(err.Error()))
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case isRegistrationError(err):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			slog.ErrorContext(r.Context(), "registering user", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Message: "user registered successfully",
		User:    user,
	})
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, bodyErrorStatus(err), errorResponse(err.Error()))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		slog.ErrorContext(r.Context(), "logging in", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /api/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, model.MeResponse{User: service.ToUserResponse(user)})
}

// isRegistrationError reports whether err is a client mistake, including a
// taken phone number.
func isRegistrationError(err error) bool {
	return errors.Is(err, service.ErrUsernameRequired) ||
		errors.Is(err, service.ErrPhoneRequired) ||
		errors.Is(err, service.ErrPasswordRequired) ||
		errors.Is(err, service.ErrPasswordTooLong) ||
		errors.Is(err, service.ErrInvalidRole) ||
		errors.Is(err, service.ErrPhoneTaken)
}
