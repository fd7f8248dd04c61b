// Package http exposes the account controller over JSON HTTP.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"filmdex/account/internal/controller/account"
	"filmdex/account/internal/token"
)

// Handler handles account service HTTP requests.
type Handler struct {
	ctrl   *account.Controller
	issuer *token.Issuer
	logger *zap.Logger
}

// New creates an account HTTP handler.
func New(ctrl *account.Controller, issuer *token.Issuer, logger *zap.Logger) *Handler {
	return &Handler{ctrl: ctrl, issuer: issuer, logger: logger}
}

// Register mounts the account routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /users", h.register)
	mux.HandleFunc("POST /tokens", h.login)
	mux.HandleFunc("GET /tokens/validate", h.validate)
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, req *http.Request) {
	var in credentials
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.ctrl.Register(req.Context(), in.Email, in.Name, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, req *http.Request) {
	var in credentials
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.ctrl.Authenticate(req.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tok, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *Handler) validate(w http.ResponseWriter, req *http.Request) {
	tok := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	userID, err := h.issuer.Validate(tok)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, account.ErrAlreadyExists):
		http.Error(w, "email already registered", http.StatusConflict)
	case errors.Is(err, account.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, account.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		h.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
