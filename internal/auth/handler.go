package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/employee-tracker/internal/platform/httpx"
	"github.com/noah-isme/employee-tracker/internal/shared"
	"github.com/noah-isme/employee-tracker/internal/users"
)

// AuthService is the behaviour the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Result, error)
	Login(ctx context.Context, in LoginInput) (*Result, error)
}

// Recorder receives auth outcomes for metrics.
type Recorder interface {
	ObserveAuth(action, outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	service  AuthService
	recorder Recorder
}

// NewHandler constructs a Handler instance. recorder may be nil.
func NewHandler(logger *slog.Logger, service AuthService, recorder Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, recorder: recorder}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

type authResponse struct {
	Message string           `json:"message"`
	User    users.PublicUser `json:"user"`
	Token   string           `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.fail(w, "register", err)
		return
	}
	h.observe("register", "success")
	h.logger.Info("user registered", slog.Int64("user_id", result.User.ID))
	httpx.JSON(w, http.StatusCreated, authResponse{
		Message: "Register success",
		User:    result.User.Public(),
		Token:   result.PlainToken,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	h.observe("login", "success")
	httpx.JSON(w, http.StatusOK, authResponse{
		Message: "Login success",
		User:    result.User.Public(),
		Token:   result.PlainToken,
	})
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		h.observe(action, "invalid")
	case errors.Is(err, shared.ErrInvalidCredentials):
		h.observe(action, "rejected")
	default:
		h.observe(action, "error")
		h.logger.Error(action+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) observe(action, outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveAuth(action, outcome)
	}
}
