// Package memory implements the movie search index in process memory with
// the same paging and sorting contract as the Meilisearch implementation.
// Text matching is a lowercase substring check requiring every term, a
// simplification of the real index's fuzzy matching.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"filmdex/movie/pkg/model"
)

const pageSize = 10

// Index is an in-memory movie search index.
type Index struct {
	mu   sync.RWMutex
	docs map[string]model.IndexDocument
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{docs: map[string]model.IndexDocument{}}
}

// Upsert adds or replaces a movie document.
func (i *Index) Upsert(ctx context.Context, doc *model.IndexDocument) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.docs[doc.ID] = *doc
	return nil
}

// DeleteByID removes a movie document; absent documents are a no-op.
func (i *Index) DeleteByID(ctx context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.docs, id)
	return nil
}

// Get returns a stored document, for tests that assert on index contents.
func (i *Index) Get(id string) (model.IndexDocument, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	doc, ok := i.docs[id]
	return doc, ok
}

// Query runs a paged, sorted search over the stored documents.
func (i *Index) Query(ctx context.Context, text string, page int64, sortField model.SortField, ascending bool) ([]model.IndexDocument, int64, error) {
	i.mu.RLock()
	var matched []model.IndexDocument
	terms := strings.Fields(strings.ToLower(text))
	for _, doc := range i.docs {
		if matchesAll(doc, terms) {
			matched = append(matched, doc)
		}
	}
	i.mu.RUnlock()

	sort.SliceStable(matched, func(a, b int) bool {
		less := compare(matched[a], matched[b], sortField)
		if ascending {
			return less < 0
		}
		return less > 0
	})

	totalPages := (int64(len(matched)) + pageSize - 1) / pageSize
	start := page * pageSize
	if start >= int64(len(matched)) {
		return nil, totalPages, nil
	}
	end := start + pageSize
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}
	return matched[start:end], totalPages, nil
}

func matchesAll(doc model.IndexDocument, terms []string) bool {
	haystack := strings.ToLower(doc.Title + " " + doc.Description)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func compare(a, b model.IndexDocument, field model.SortField) int {
	var av, bv float64
	switch field {
	case model.SortReleaseYear:
		av, bv = float64(a.ReleaseYear), float64(b.ReleaseYear)
	case model.SortTotalLikes:
		av, bv = float64(a.TotalLikes), float64(b.TotalLikes)
	default:
		av, bv = a.Rating, b.Rating
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return strings.Compare(a.ID, b.ID)
	}
}
