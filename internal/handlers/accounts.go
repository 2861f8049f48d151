package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/AnshRaj112/certify-backend/internal/models"
	"github.com/AnshRaj112/certify-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type AccountService interface {
	Register(ctx context.Context, username, password, fullName string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	BootstrapAdmin(ctx context.Context) (*services.BootstrapResult, error)
}

type RegisterRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
	FullName *string `json:"full_name" validate:"required"`
}

type LoginRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// BootstrapResponse includes the admin password in plaintext. It is shown
// once, at first-run setup, and cannot be retrieved afterwards.
type BootstrapResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type AccountHandler struct {
	accounts AccountService
	validate *validator.Validate
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts, validate: newValidator()}
}

// AccountRouter registers account routes on the given /api router.
func AccountRouter(r chi.Router, accounts AccountService) {
	h := NewAccountHandler(accounts)

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/create-admin", h.CreateAdmin)
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.accounts.Register(ctx, deref(req.Username), deref(req.Password), deref(req.FullName))
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		writeServiceError(w, err, "registering user", "")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.accounts.Login(ctx, deref(req.Username), deref(req.Password))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeServiceError(w, err, "logging in", "")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", User: *user})
}

// CreateAdmin bootstraps the first account. It only succeeds on an empty
// user collection.
func (h *AccountHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.accounts.BootstrapAdmin(ctx)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			writeError(w, http.StatusBadRequest, "Admin user already exists")
			return
		}
		writeServiceError(w, err, "creating admin", "")
		return
	}
	writeJSON(w, http.StatusOK, BootstrapResponse{
		Message:  "Admin user created successfully",
		Username: res.User.Username,
		Password: res.Password,
	})
}
