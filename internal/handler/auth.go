package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/survivalcast/survivalcast-go/internal/model"
	"github.com/survivalcast/survivalcast-go/internal/service"
)

const signupMessage = "User created successfully"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// HandleSignup handles POST /signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Signup(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse("Email already registered"))
		case service.IsValidationError(err):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err.Error()))
		default:
			h.logger.Error("signup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	h.logger.Info("user registered")
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: signupMessage})
}

// HandleLogin handles POST /login requests. Credentials arrive as an OAuth2
// password form: username (the email) and password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	req := model.LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse("username and password are required"))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse("Incorrect email or password"))
			return
		}
		h.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
