// Package movie implements the movie domain service. Mutations follow a
// read-modify-conditional-write cycle fenced by the record revision: every
// successful write stores a fresh revision and flags the record dirty so the
// reconciler refreshes the search index out of band.
package movie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"filmdex/movie/internal/repository"
	"filmdex/movie/pkg/model"
)

var (
	// ErrNotFound is returned for absent or tombstoned movies.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write lost to a concurrent
	// writer. Recoverable: the caller may re-read and retry.
	ErrConflict = errors.New("revision conflict")
	// ErrInvalidInput is returned for requests that fail domain validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence wraps store faults. Fatal for the current operation.
	ErrPersistence = errors.New("persistence failure")
)

// likeAttempts bounds the read-modify-write retries for like/unlike, which
// are expected to collide under concurrent use.
const likeAttempts = 5

type movieRepository interface {
	Get(ctx context.Context, id string) (*model.MovieRecord, error)
	Create(ctx context.Context, rec *model.MovieRecord) error
	ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expectedRevision string) (int64, error)
}

type searchIndex interface {
	Query(ctx context.Context, text string, page int64, sortField model.SortField, ascending bool) ([]model.IndexDocument, int64, error)
}

// CreateMovie carries the fields for a new movie.
type CreateMovie struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear"`
	Creator     string  `json:"creator"`
}

// UpdateMovie carries replacement field values for an existing movie.
type UpdateMovie struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear"`
	Creator     string  `json:"creator"`
}

// Controller orchestrates movie mutations against the record store and
// answers search queries from the index.
type Controller struct {
	repo   movieRepository
	index  searchIndex
	logger *zap.Logger
}

// New creates a movie controller.
func New(repo movieRepository, index searchIndex, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, index: index, logger: logger}
}

// Create persists a new movie and returns its view. The primary store is
// read-your-write consistent; the search index catches up on the next sweep.
func (c *Controller) Create(ctx context.Context, in CreateMovie) (*model.Movie, error) {
	if err := validateFields(in.Title, in.Rating); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &model.MovieRecord{
		ID:          uuid.NewString(),
		Revision:    uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Rating:      in.Rating,
		ReleaseYear: in.ReleaseYear,
		Creator:     in.Creator,
		Dirty:       true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: create movie: %w", ErrPersistence, err)
	}
	return rec.View(), nil
}

// Get returns a movie view. Tombstoned records read as not found even while
// the row physically exists awaiting the reconciliation purge.
func (c *Controller) Get(ctx context.Context, id string) (*model.Movie, error) {
	rec, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.View(), nil
}

// Update replaces the movie's domain fields. A concurrent writer surfaces as
// ErrConflict; retry policy is the caller's concern.
func (c *Controller) Update(ctx context.Context, id string, in UpdateMovie) (*model.Movie, error) {
	if err := validateFields(in.Title, in.Rating); err != nil {
		return nil, err
	}
	rec, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := rec.Revision
	rec.Title = in.Title
	rec.Description = in.Description
	rec.Rating = in.Rating
	rec.ReleaseYear = in.ReleaseYear
	rec.Creator = in.Creator
	rec.Dirty = true
	rec.Revision = uuid.NewString()
	rec.UpdatedAt = time.Now().UTC()
	if err := c.conditionalWrite(ctx, rec, expected); err != nil {
		return nil, err
	}
	return rec.View(), nil
}

// Delete tombstones a movie. Physical removal of the record, its likes and
// its index document happens during reconciliation. Deleting an absent or
// already tombstoned movie is a no-op.
func (c *Controller) Delete(ctx context.Context, id string) error {
	rec, err := c.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	expected := rec.Revision
	rec.Deleted = true
	rec.Dirty = true
	rec.Revision = uuid.NewString()
	rec.UpdatedAt = time.Now().UTC()
	return c.conditionalWrite(ctx, rec, expected)
}

// Like records a pending like for the user. The read-modify-write cycle is
// retried on revision conflicts up to a bounded attempt count; each retry
// re-reads the current pending sets so concurrent likes by other users are
// preserved.
func (c *Controller) Like(ctx context.Context, movieID, userID string) error {
	return c.mutatePending(ctx, movieID, userID, (*model.MovieRecord).MarkLike)
}

// Unlike records a pending unlike for the user, with the same retry policy
// as Like.
func (c *Controller) Unlike(ctx context.Context, movieID, userID string) error {
	return c.mutatePending(ctx, movieID, userID, (*model.MovieRecord).MarkUnlike)
}

func (c *Controller) mutatePending(ctx context.Context, movieID, userID string, mark func(*model.MovieRecord, string)) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return retry.Do(
		func() error {
			rec, err := c.load(ctx, movieID)
			if err != nil {
				return err
			}
			expected := rec.Revision
			mark(rec, userID)
			rec.Dirty = true
			rec.Revision = uuid.NewString()
			rec.UpdatedAt = time.Now().UTC()
			return c.conditionalWrite(ctx, rec, expected)
		},
		retry.Context(ctx),
		retry.Attempts(likeAttempts),
		retry.Delay(5*time.Millisecond),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrConflict) }),
		retry.LastErrorOnly(true),
	)
}

// load fetches a record and maps tombstones and store misses to ErrNotFound.
func (c *Controller) load(ctx context.Context, id string) (*model.MovieRecord, error) {
	rec, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get movie %s: %w", ErrPersistence, id, err)
	}
	if rec.Deleted {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (c *Controller) conditionalWrite(ctx context.Context, rec *model.MovieRecord, expected string) error {
	n, err := c.repo.ConditionalUpdate(ctx, rec, expected)
	if err != nil {
		return fmt.Errorf("%w: update movie %s: %w", ErrPersistence, rec.ID, err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func validateFields(title string, rating float64) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if rating < 0 || rating > 10 {
		return fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidInput)
	}
	return nil
}
