package testutil

import (
	"go.uber.org/zap"

	"filmdex/movie/internal/controller/movie"
	httphandler "filmdex/movie/internal/handler/http"
	repomemory "filmdex/movie/internal/repository/memory"
	searchmemory "filmdex/movie/internal/search/memory"
)

// NewTestMovieHandler creates a movie HTTP handler backed by in-memory
// stores, to be used in tests.
func NewTestMovieHandler() (*httphandler.Handler, *movie.Controller) {
	repo := repomemory.NewMovieRepository()
	index := searchmemory.NewIndex()
	ctrl := movie.New(repo, index, zap.NewNop())
	return httphandler.New(ctrl, zap.NewNop()), ctrl
}
