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

func newTestController() (*Controller, *repomemory.MovieRepository) {
	repo := repomemory.NewMovieRepository()
	return New(repo, searchmemory.NewIndex(), zap.NewNop()), repo
}

func validInput() CreateMovie {
	return CreateMovie{
		Title:       "Akira",
		Description: "Neo-Tokyo is about to explode",
		Rating:      9,
		ReleaseYear: 1988,
		Creator:     "Katsuhiro Otomo",
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController()

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := ctrl.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got, "primary store must be read-your-write consistent")

	rec, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, rec.Dirty, "new records start dirty so the sweep indexes them")
	assert.NotEmpty(t, rec.Revision)
	assert.Empty(t, rec.PendingLikes)
	assert.Empty(t, rec.PendingUnlikes)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController()

	in := validInput()
	in.Title = ""
	_, err := ctrl.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.Rating = 11
	_, err = ctrl.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMissing(t *testing.T) {
	ctrl, _ := newTestController()
	_, err := ctrl.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesFieldsAndRotatesRevision(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController()

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)
	before, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)

	updated, err := ctrl.Update(ctx, created.ID, UpdateMovie{
		Title:       "Akira (Remastered)",
		Description: created.Description,
		Rating:      9.5,
		ReleaseYear: created.ReleaseYear,
		Creator:     created.Creator,
	})
	require.NoError(t, err)
	assert.Equal(t, "Akira (Remastered)", updated.Title)

	after, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.Revision, after.Revision)
	assert.True(t, after.Dirty)
}

func TestUpdateSurfacesConflictWithoutRetry(t *testing.T) {
	ctx := context.Background()
	repo := repomemory.NewMovieRepository()
	conflicting := &conflictOnce{MovieRepository: repo, failures: 1}
	ctrl := New(conflicting, searchmemory.NewIndex(), zap.NewNop())

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = ctrl.Update(ctx, created.ID, UpdateMovie{Title: "New", Rating: 5})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, conflicting.calls, "update must not retry internally")
}

func TestDeleteTombstonesRecord(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController()

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, ctrl.Delete(ctx, created.ID))

	// Reads hide the tombstone immediately.
	_, err = ctrl.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// But the row still exists until the reconciler purges it.
	rec, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, rec.Deleted)
	assert.True(t, rec.Dirty)

	// Deleting again is a no-op.
	assert.NoError(t, ctrl.Delete(ctx, created.ID))
	assert.NoError(t, ctrl.Delete(ctx, "never-existed"))
}

func TestLikeUnlikeMaintainPendingSets(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController()

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, ctrl.Like(ctx, created.ID, "u1"))
	require.NoError(t, ctrl.Like(ctx, created.ID, "u2"))
	require.NoError(t, ctrl.Unlike(ctx, created.ID, "u1"))

	rec, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, rec.PendingLikes)
	assert.Equal(t, []string{"u1"}, rec.PendingUnlikes)
	assert.True(t, rec.Dirty)
}

func TestLikeTombstonedMovie(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController()

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, ctrl.Delete(ctx, created.ID))

	assert.ErrorIs(t, ctrl.Like(ctx, created.ID, "u1"), ErrNotFound)
	assert.ErrorIs(t, ctrl.Unlike(ctx, created.ID, "u1"), ErrNotFound)
}

func TestLikeRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := repomemory.NewMovieRepository()
	conflicting := &conflictOnce{MovieRepository: repo, failures: 2}
	ctrl := New(conflicting, searchmemory.NewIndex(), zap.NewNop())

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, ctrl.Like(ctx, created.ID, "u1"))
	assert.Equal(t, 3, conflicting.calls, "expected two conflicted attempts then success")

	rec, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, rec.PendingLikes)
}

func TestLikeGivesUpAfterBoundedAttempts(t *testing.T) {
	ctx := context.Background()
	repo := repomemory.NewMovieRepository()
	conflicting := &conflictOnce{MovieRepository: repo, failures: likeAttempts + 10}
	ctrl := New(conflicting, searchmemory.NewIndex(), zap.NewNop())

	created, err := ctrl.Create(ctx, validInput())
	require.NoError(t, err)

	err = ctrl.Like(ctx, created.ID, "u1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, likeAttempts, conflicting.calls)
}

// conflictOnce fails the first failures conditional updates with a zero
// affected count, then delegates to the real repository.
type conflictOnce struct {
	*repomemory.MovieRepository
	failures int
	calls    int
}

func (c *conflictOnce) ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expected string) (int64, error) {
	c.calls++
	if c.calls <= c.failures {
		return 0, nil
	}
	return c.MovieRepository.ConditionalUpdate(ctx, rec, expected)
}
