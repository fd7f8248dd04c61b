package movie

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	repomemory "filmdex/movie/internal/repository/memory"
	searchmemory "filmdex/movie/internal/search/memory"
	"filmdex/movie/pkg/model"
)

func newSearchController(t *testing.T, docs ...model.IndexDocument) *Controller {
	t.Helper()
	index := searchmemory.NewIndex()
	for i := range docs {
		require.NoError(t, index.Upsert(context.Background(), &docs[i]))
	}
	return New(repomemory.NewMovieRepository(), index, zap.NewNop())
}

func TestSearchFallbacksForInvalidInputs(t *testing.T) {
	ctrl := newSearchController(t,
		model.IndexDocument{ID: "m1", Title: "Akira", Rating: 9},
		model.IndexDocument{ID: "m2", Title: "Tampopo", Rating: 8},
	)

	res, err := ctrl.Search(context.Background(), "", -1, model.SortField("wrong"), true)
	require.NoError(t, err)
	assert.Equal(t, model.SortRating, res.SortField, "effective sort field must reflect the fallback")
	assert.Equal(t, int64(0), res.Page, "effective page must reflect the fallback")
	assert.True(t, res.Ascending)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "m2", res.Entries[0].ID)
}

func TestSearchSortsByRequestedField(t *testing.T) {
	ctrl := newSearchController(t,
		model.IndexDocument{ID: "m1", Title: "Akira", ReleaseYear: 1988, TotalLikes: 5},
		model.IndexDocument{ID: "m2", Title: "Tampopo", ReleaseYear: 1985, TotalLikes: 9},
	)

	res, err := ctrl.Search(context.Background(), "", 0, model.SortTotalLikes, false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "m2", res.Entries[0].ID)
	assert.Equal(t, model.SortTotalLikes, res.SortField)

	res, err = ctrl.Search(context.Background(), "", 0, model.SortReleaseYear, true)
	require.NoError(t, err)
	assert.Equal(t, "m2", res.Entries[0].ID)
}

func TestSearchRequiresAllTerms(t *testing.T) {
	ctrl := newSearchController(t,
		model.IndexDocument{ID: "m1", Title: "Seven Samurai", Description: "Kurosawa epic"},
		model.IndexDocument{ID: "m2", Title: "Samurai Champloo", Description: "Anime series"},
	)

	res, err := ctrl.Search(context.Background(), "samurai kurosawa", 0, model.SortRating, false)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "m1", res.Entries[0].ID)
}

func TestSearchPaging(t *testing.T) {
	var docs []model.IndexDocument
	for i := 0; i < 25; i++ {
		docs = append(docs, model.IndexDocument{ID: string(rune('a' + i)), Rating: float64(i % 10)})
	}
	ctrl := newSearchController(t, docs...)

	res, err := ctrl.Search(context.Background(), "", 2, model.SortRating, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalPages)
	assert.Equal(t, int64(2), res.Page)
	assert.Len(t, res.Entries, 5)

	res, err = ctrl.Search(context.Background(), "", 7, model.SortRating, false)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, int64(3), res.TotalPages)
}
