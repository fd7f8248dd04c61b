package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmdex/movie/internal/repository"
	"filmdex/movie/pkg/model"
)

func TestMovieRepositoryGetMissing(t *testing.T) {
	repo := NewMovieRepository()
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConditionalUpdateMatchingRevision(t *testing.T) {
	ctx := context.Background()
	repo := NewMovieRepository()
	rec := &model.MovieRecord{ID: "m1", Revision: "r1", Title: "Alien", Dirty: true}
	require.NoError(t, repo.Create(ctx, rec))

	rec.Title = "Aliens"
	rec.Revision = "r2"
	n, err := repo.ConditionalUpdate(ctx, rec, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Aliens", got.Title)
	assert.Equal(t, "r2", got.Revision)
}

func TestConditionalUpdateStaleRevisionLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := NewMovieRepository()
	rec := &model.MovieRecord{ID: "m1", Revision: "r2", Title: "Alien", PendingLikes: []string{"u1"}}
	require.NoError(t, repo.Create(ctx, rec))

	before, err := repo.Get(ctx, "m1")
	require.NoError(t, err)

	stale := &model.MovieRecord{ID: "m1", Revision: "r3", Title: "Clobbered"}
	n, err := repo.ConditionalUpdate(ctx, stale, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	after, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("record changed after failed conditional write (-before +after):\n%s", diff)
	}
}

func TestFindDirtyRespectsLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMovieRepository()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &model.MovieRecord{ID: id, Revision: "r", Dirty: true}))
	}
	require.NoError(t, repo.Create(ctx, &model.MovieRecord{ID: "clean", Revision: "r"}))

	recs, err := repo.FindDirty(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = repo.FindDirty(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMovieRepository()
	require.NoError(t, repo.Create(ctx, &model.MovieRecord{ID: "m1", Revision: "r1", PendingLikes: []string{"u1"}}))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	got.PendingLikes[0] = "mutated"
	got.Title = "mutated"

	fresh, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, fresh.PendingLikes)
	assert.Empty(t, fresh.Title)
}

func TestLikeRepository(t *testing.T) {
	ctx := context.Background()
	likes := NewLikeRepository()

	for _, u := range []string{"u1", "u2"} {
		like := &model.Like{ID: model.LikeID("m1", u), MovieID: "m1", UserID: u}
		require.NoError(t, likes.Upsert(ctx, like))
		// upsert again, count must not grow
		require.NoError(t, likes.Upsert(ctx, like))
	}
	require.NoError(t, likes.Upsert(ctx, &model.Like{ID: model.LikeID("m2", "u1"), MovieID: "m2", UserID: "u1"}))

	n, err := likes.CountByMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, likes.DeleteByID(ctx, model.LikeID("m1", "u1")))
	n, err = likes.CountByMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, likes.DeleteAllByMovie(ctx, "m1"))
	n, err = likes.CountByMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = likes.CountByMovie(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
