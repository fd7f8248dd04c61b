package memory

import (
	"context"
	"sync"

	"filmdex/movie/pkg/model"
)

// LikeRepository is an in-memory like store keyed by the composite like id.
type LikeRepository struct {
	mu   sync.RWMutex
	data map[string]model.Like
}

// NewLikeRepository creates an empty in-memory like store.
func NewLikeRepository() *LikeRepository {
	return &LikeRepository{data: map[string]model.Like{}}
}

// Upsert writes a like row, replacing any existing row with the same key.
func (m *LikeRepository) Upsert(ctx context.Context, like *model.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[like.ID] = *like
	return nil
}

// DeleteByID removes a like row; missing rows are a no-op.
func (m *LikeRepository) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, id)
	return nil
}

// DeleteAllByMovie removes every like row for a movie.
func (m *LikeRepository) DeleteAllByMovie(ctx context.Context, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, like := range m.data {
		if like.MovieID == movieID {
			delete(m.data, id)
		}
	}
	return nil
}

// CountByMovie counts the like rows for a movie.
func (m *LikeRepository) CountByMovie(ctx context.Context, movieID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, like := range m.data {
		if like.MovieID == movieID {
			n++
		}
	}
	return n, nil
}
