// Package http exposes the movie controller over JSON HTTP. Thin glue: it
// decodes requests, delegates to the controller and maps the domain error
// taxonomy onto status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"filmdex/movie/internal/controller/movie"
	"filmdex/movie/pkg/model"
)

// Handler handles movie service HTTP requests.
type Handler struct {
	ctrl   *movie.Controller
	logger *zap.Logger
}

// New creates a movie HTTP handler.
func New(ctrl *movie.Controller, logger *zap.Logger) *Handler {
	return &Handler{ctrl: ctrl, logger: logger}
}

// Register mounts the movie routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /movies", h.create)
	mux.HandleFunc("GET /movies", h.search)
	mux.HandleFunc("GET /movies/{id}", h.get)
	mux.HandleFunc("PUT /movies/{id}", h.update)
	mux.HandleFunc("DELETE /movies/{id}", h.delete)
	mux.HandleFunc("PUT /movies/{id}/likes/{userID}", h.like)
	mux.HandleFunc("DELETE /movies/{id}/likes/{userID}", h.unlike)
}

func (h *Handler) create(w http.ResponseWriter, req *http.Request) {
	var in movie.CreateMovie
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	m, err := h.ctrl.Create(req.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) get(w http.ResponseWriter, req *http.Request) {
	m, err := h.ctrl.Get(req.Context(), req.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) update(w http.ResponseWriter, req *http.Request) {
	var in movie.UpdateMovie
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	m, err := h.ctrl.Update(req.Context(), req.PathValue("id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) delete(w http.ResponseWriter, req *http.Request) {
	if err := h.ctrl.Delete(req.Context(), req.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) like(w http.ResponseWriter, req *http.Request) {
	if err := h.ctrl.Like(req.Context(), req.PathValue("id"), req.PathValue("userID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlike(w http.ResponseWriter, req *http.Request) {
	if err := h.ctrl.Unlike(req.Context(), req.PathValue("id"), req.PathValue("userID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	// Malformed numbers fall through to zero, matching the page fallback.
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	ascending, _ := strconv.ParseBool(q.Get("ascending"))
	res, err := h.ctrl.Search(req.Context(), q.Get("query"), page, model.SortField(q.Get("sortField")), ascending)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
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
	case errors.Is(err, movie.ErrNotFound):
		http.Error(w, "movie not found", http.StatusNotFound)
	case errors.Is(err, movie.ErrConflict):
		http.Error(w, "concurrent modification, retry", http.StatusConflict)
	case errors.Is(err, movie.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
