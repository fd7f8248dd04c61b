// Package http implements the website BFF endpoints: a thin, rate-limited
// proxy over the account and movie services. Like/unlike resolve the acting
// user from the session token, so clients never pick their own user id.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	accountgateway "filmdex/website/internal/gateway/account/http"
	moviegateway "filmdex/website/internal/gateway/movie/http"
)

// Handler handles website BFF HTTP requests.
type Handler struct {
	accounts *accountgateway.Gateway
	movies   *moviegateway.Gateway
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// New creates a website handler with the given request rate limit.
func New(accounts *accountgateway.Gateway, movies *moviegateway.Gateway, limit rate.Limit, burst int, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		movies:   movies,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
	}
}

// Register mounts the website routes on the mux, wrapped in rate limiting.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/login", h.limit(h.login))
	mux.Handle("GET /api/movies", h.limit(h.search))
	mux.Handle("GET /api/movies/{id}", h.limit(h.get))
	mux.Handle("PUT /api/movies/{id}/like", h.limit(h.like))
	mux.Handle("DELETE /api/movies/{id}/like", h.limit(h.unlike))
}

func (h *Handler) limit(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !h.limiter.Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, req)
	})
}

func (h *Handler) login(w http.ResponseWriter, req *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	token, err := h.accounts.Login(req.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) search(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	ascending, _ := strconv.ParseBool(q.Get("ascending"))
	res, err := h.movies.Search(req.Context(), q.Get("query"), page, q.Get("sortField"), ascending)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) get(w http.ResponseWriter, req *http.Request) {
	m, err := h.movies.Get(req.Context(), req.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) like(w http.ResponseWriter, req *http.Request) {
	userID, ok := h.authenticate(w, req)
	if !ok {
		return
	}
	if err := h.movies.Like(req.Context(), req.PathValue("id"), userID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlike(w http.ResponseWriter, req *http.Request) {
	userID, ok := h.authenticate(w, req)
	if !ok {
		return
	}
	if err := h.movies.Unlike(req.Context(), req.PathValue("id"), userID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authenticate resolves the acting user from the bearer token, writing the
// error response itself when the token is missing or invalid.
func (h *Handler) authenticate(w http.ResponseWriter, req *http.Request) (string, bool) {
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return "", false
	}
	userID, err := h.accounts.Validate(req.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return "", false
	}
	return userID, true
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
	case errors.Is(err, accountgateway.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, moviegateway.ErrNotFound):
		http.Error(w, "movie not found", http.StatusNotFound)
	default:
		h.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
