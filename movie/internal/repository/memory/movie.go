// Package memory implements the movie service stores in process memory. It
// honors the same conditional-write contract as the MongoDB implementation
// and backs tests and local runs without external infrastructure.
package memory

import (
	"context"
	"sync"

	"filmdex/movie/internal/repository"
	"filmdex/movie/pkg/model"
)

// MovieRepository is an in-memory movie record store.
type MovieRepository struct {
	mu   sync.RWMutex
	data map[string]*model.MovieRecord
}

// NewMovieRepository creates an empty in-memory movie store.
func NewMovieRepository() *MovieRepository {
	return &MovieRepository{data: map[string]*model.MovieRecord{}}
}

// cloneRecord copies a record so callers never share slices with the store.
func cloneRecord(r *model.MovieRecord) *model.MovieRecord {
	c := *r
	c.PendingLikes = append([]string(nil), r.PendingLikes...)
	c.PendingUnlikes = append([]string(nil), r.PendingUnlikes...)
	return &c
}

// Get retrieves a movie record by id.
func (m *MovieRepository) Get(ctx context.Context, id string) (*model.MovieRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Create inserts a new movie record.
func (m *MovieRepository) Create(ctx context.Context, rec *model.MovieRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[rec.ID] = cloneRecord(rec)
	return nil
}

// ConditionalUpdate applies the full record only if the stored revision still
// equals expectedRevision, returning the number of records modified.
func (m *MovieRepository) ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expectedRevision string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.data[rec.ID]
	if !ok || cur.Revision != expectedRevision {
		return 0, nil
	}
	m.data[rec.ID] = cloneRecord(rec)
	return 1, nil
}

// Delete physically removes a record.
func (m *MovieRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, id)
	return nil
}

// FindDirty returns up to limit records flagged dirty.
func (m *MovieRepository) FindDirty(ctx context.Context, limit int64) ([]*model.MovieRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recs []*model.MovieRecord
	for _, rec := range m.data {
		if !rec.Dirty {
			continue
		}
		recs = append(recs, cloneRecord(rec))
		if int64(len(recs)) >= limit {
			break
		}
	}
	return recs, nil
}
