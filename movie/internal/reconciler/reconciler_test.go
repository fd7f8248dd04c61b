package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	repomemory "filmdex/movie/internal/repository/memory"
	searchmemory "filmdex/movie/internal/search/memory"
	"filmdex/movie/pkg/model"
)

func newTestReconciler(movies movieStore, likes likeStore, index searchIndex) *Reconciler {
	cfg := Config{Interval: time.Hour, BatchSize: 100, Workers: 2}
	return New(movies, likes, index, zap.NewNop(), tally.NoopScope, cfg)
}

func dirtyRecord(id string) *model.MovieRecord {
	return &model.MovieRecord{
		ID:          id,
		Revision:    "rev-initial",
		Title:       "Akira",
		Description: "Neo-Tokyo is about to explode",
		Rating:      9,
		ReleaseYear: 1988,
		Dirty:       true,
	}
}

func TestSweepDrainsPendingLikes(t *testing.T) {
	ctx := context.Background()
	movies := repomemory.NewMovieRepository()
	likes := repomemory.NewLikeRepository()
	index := searchmemory.NewIndex()

	rec := dirtyRecord("m1")
	rec.MarkLike("u1")
	rec.MarkLike("u2")
	rec.MarkUnlike("u1")
	require.NoError(t, movies.Create(ctx, rec))

	r := newTestReconciler(movies, likes, index)
	r.Sweep(ctx)

	doc, ok := index.Get("m1")
	require.True(t, ok, "index document missing after sweep")
	assert.Equal(t, int64(1), doc.TotalLikes)
	assert.Equal(t, "Akira", doc.Title)
	assert.Equal(t, 1988, doc.ReleaseYear)

	n, err := likes.CountByMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := movies.Get(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, got.Dirty)
	assert.Empty(t, got.PendingLikes)
	assert.Empty(t, got.PendingUnlikes)
	assert.NotEqual(t, "rev-initial", got.Revision)
}

func TestSweepRecountsFromLikeStore(t *testing.T) {
	ctx := context.Background()
	movies := repomemory.NewMovieRepository()
	likes := repomemory.NewLikeRepository()
	index := searchmemory.NewIndex()

	// A like row from an earlier sweep must be counted even though it is not
	// in the pending sets.
	require.NoError(t, likes.Upsert(ctx, &model.Like{ID: model.LikeID("m1", "u0"), MovieID: "m1", UserID: "u0"}))

	rec := dirtyRecord("m1")
	rec.MarkLike("u1")
	require.NoError(t, movies.Create(ctx, rec))

	newTestReconciler(movies, likes, index).Sweep(ctx)

	doc, ok := index.Get("m1")
	require.True(t, ok)
	assert.Equal(t, int64(2), doc.TotalLikes)
}

func TestSweepPurgesDeletedMovie(t *testing.T) {
	ctx := context.Background()
	movies := repomemory.NewMovieRepository()
	likes := repomemory.NewLikeRepository()
	index := searchmemory.NewIndex()

	require.NoError(t, likes.Upsert(ctx, &model.Like{ID: model.LikeID("m1", "u1"), MovieID: "m1", UserID: "u1"}))
	require.NoError(t, index.Upsert(ctx, &model.IndexDocument{ID: "m1", Title: "Akira"}))

	rec := dirtyRecord("m1")
	rec.Deleted = true
	require.NoError(t, movies.Create(ctx, rec))

	newTestReconciler(movies, likes, index).Sweep(ctx)

	_, ok := index.Get("m1")
	assert.False(t, ok, "index document should be removed")

	n, err := likes.CountByMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = movies.Get(ctx, "m1")
	assert.Error(t, err, "record should be physically removed")
}

// conflictingMovies simulates a domain operation racing the sweep by failing
// every conditional update while the conflict flag is set.
type conflictingMovies struct {
	*repomemory.MovieRepository
	conflict bool
}

func (c *conflictingMovies) ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expected string) (int64, error) {
	if c.conflict {
		return 0, nil
	}
	return c.MovieRepository.ConditionalUpdate(ctx, rec, expected)
}

func TestSweepLeavesRecordDirtyOnConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	movies := &conflictingMovies{MovieRepository: repomemory.NewMovieRepository(), conflict: true}
	likes := repomemory.NewLikeRepository()
	index := searchmemory.NewIndex()

	rec := dirtyRecord("m1")
	rec.MarkLike("u1")
	require.NoError(t, movies.Create(ctx, rec))

	r := newTestReconciler(movies, likes, index)
	r.Sweep(ctx)

	got, err := movies.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Dirty, "record must stay dirty after a conflicting write-back")
	assert.Equal(t, []string{"u1"}, got.PendingLikes)

	// Once the contention clears, the next sweep converges.
	movies.conflict = false
	r.Sweep(ctx)

	got, err = movies.Get(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, got.Dirty)
}

// faultyLikes injects a transient fault for a single movie id.
type faultyLikes struct {
	*repomemory.LikeRepository
	failMovieID string
}

func (f *faultyLikes) Upsert(ctx context.Context, like *model.Like) error {
	if like.MovieID == f.failMovieID {
		return errors.New("store unavailable")
	}
	return f.LikeRepository.Upsert(ctx, like)
}

func TestSweepIsolatesPerRecordFailures(t *testing.T) {
	ctx := context.Background()
	movies := repomemory.NewMovieRepository()
	likes := &faultyLikes{LikeRepository: repomemory.NewLikeRepository(), failMovieID: "broken"}
	index := searchmemory.NewIndex()

	broken := dirtyRecord("broken")
	broken.MarkLike("u1")
	require.NoError(t, movies.Create(ctx, broken))

	healthy := dirtyRecord("healthy")
	healthy.MarkLike("u1")
	require.NoError(t, movies.Create(ctx, healthy))

	r := newTestReconciler(movies, likes, index)
	r.Sweep(ctx)

	got, err := movies.Get(ctx, "healthy")
	require.NoError(t, err)
	assert.False(t, got.Dirty, "one record's failure must not abort the others")

	got, err = movies.Get(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, got.Dirty)

	// Fault clears; the dirty record self-heals on the next sweep.
	likes.failMovieID = ""
	r.Sweep(ctx)

	got, err = movies.Get(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, got.Dirty)

	doc, ok := index.Get("broken")
	require.True(t, ok)
	assert.Equal(t, int64(1), doc.TotalLikes)
}

func TestStartStop(t *testing.T) {
	movies := repomemory.NewMovieRepository()
	likes := repomemory.NewLikeRepository()
	index := searchmemory.NewIndex()

	r := New(movies, likes, index, zap.NewNop(), tally.NoopScope, Config{Interval: time.Millisecond, BatchSize: 10, Workers: 2})
	r.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	r.Stop()
	// Stop twice must not panic or hang.
	r.Stop()
}
