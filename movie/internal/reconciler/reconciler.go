// Package reconciler converges the primary movie store into the search
// index. A periodic sweep drains each dirty record's pending like mutations
// into the like store, recomputes the like count from durable rows, rebuilds
// the index document and writes the record back with a conditional update.
// Every failure path leaves the record dirty, so the next sweep retries it;
// the sweep never blocks on, or is blocked by, the request path.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"filmdex/movie/pkg/model"
)

type movieStore interface {
	FindDirty(ctx context.Context, limit int64) ([]*model.MovieRecord, error)
	ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expectedRevision string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type likeStore interface {
	Upsert(ctx context.Context, like *model.Like) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAllByMovie(ctx context.Context, movieID string) error
	CountByMovie(ctx context.Context, movieID string) (int64, error)
}

type searchIndex interface {
	Upsert(ctx context.Context, doc *model.IndexDocument) error
	DeleteByID(ctx context.Context, id string) error
}

// Config tunes the sweep cadence and fan-out.
type Config struct {
	Interval  time.Duration
	BatchSize int64
	Workers   int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Reconciler is the periodic index reconciliation task.
type Reconciler struct {
	movies movieStore
	likes  likeStore
	index  searchIndex
	logger *zap.Logger
	cfg    Config

	sweeps     tally.Counter
	reconciled tally.Counter
	purged     tally.Counter
	conflicts  tally.Counter
	failures   tally.Counter

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a reconciler over the given stores and index.
func New(movies movieStore, likes likeStore, index searchIndex, logger *zap.Logger, scope tally.Scope, cfg Config) *Reconciler {
	return &Reconciler{
		movies:     movies,
		likes:      likes,
		index:      index,
		logger:     logger,
		cfg:        cfg.withDefaults(),
		sweeps:     scope.Counter("sweeps"),
		reconciled: scope.Counter("records_reconciled"),
		purged:     scope.Counter("records_purged"),
		conflicts:  scope.Counter("write_conflicts"),
		failures:   scope.Counter("record_failures"),
	}
}

// Start launches the background sweep loop. The first sweep runs immediately.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.running = true

	r.wg.Add(1)
	go r.loop(ctx)
	r.logger.Info("Reconciler started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Int64("batchSize", r.cfg.BatchSize),
		zap.Int("workers", r.cfg.Workers))
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.running = false
	r.logger.Info("Reconciler stopped")
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep processes one batch of dirty records, fanning records out over a
// bounded worker pool. Per-record failures are logged and swallowed; the
// record stays dirty and is reconsidered on the next sweep.
func (r *Reconciler) Sweep(ctx context.Context) {
	r.sweeps.Inc(1)

	recs, err := r.movies.FindDirty(ctx, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error("Failed to query dirty records", zap.Error(err))
		return
	}
	if len(recs) == 0 {
		return
	}

	p := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for _, rec := range recs {
		p.Go(func() {
			if err := r.reconcile(ctx, rec); err != nil {
				r.failures.Inc(1)
				r.logger.Warn("Failed to reconcile record, leaving dirty",
					zap.String("movieID", rec.ID), zap.Error(err))
			}
		})
	}
	p.Wait()
}

func (r *Reconciler) reconcile(ctx context.Context, rec *model.MovieRecord) error {
	if rec.Deleted {
		return r.purge(ctx, rec)
	}

	for _, userID := range rec.PendingLikes {
		like := &model.Like{
			ID:        model.LikeID(rec.ID, userID),
			MovieID:   rec.ID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.likes.Upsert(ctx, like); err != nil {
			return err
		}
	}
	for _, userID := range rec.PendingUnlikes {
		if err := r.likes.DeleteByID(ctx, model.LikeID(rec.ID, userID)); err != nil {
			return err
		}
	}

	// Recount from durable rows rather than trusting pending-set deltas, so
	// the materialized count self-heals after a crash mid-sweep.
	total, err := r.likes.CountByMovie(ctx, rec.ID)
	if err != nil {
		return err
	}
	if err := r.index.Upsert(ctx, model.NewIndexDocument(rec, total)); err != nil {
		return err
	}

	expected := rec.Revision
	rec.ClearPending()
	rec.Dirty = false
	rec.Revision = uuid.NewString()
	rec.UpdatedAt = time.Now().UTC()
	n, err := r.movies.ConditionalUpdate(ctx, rec, expected)
	if err != nil {
		return err
	}
	if n == 0 {
		// A domain operation won the race since our read. The record is
		// still dirty in the store and the next sweep picks it up.
		r.conflicts.Inc(1)
		r.logger.Debug("Record mutated during sweep, retrying next interval",
			zap.String("movieID", rec.ID))
		return nil
	}
	r.reconciled.Inc(1)
	return nil
}

// purge removes a tombstoned movie from the index, the like store and
// finally the primary store.
func (r *Reconciler) purge(ctx context.Context, rec *model.MovieRecord) error {
	if err := r.index.DeleteByID(ctx, rec.ID); err != nil {
		return err
	}
	if err := r.likes.DeleteAllByMovie(ctx, rec.ID); err != nil {
		return err
	}
	if err := r.movies.Delete(ctx, rec.ID); err != nil {
		return err
	}
	r.purged.Inc(1)
	r.logger.Info("Purged deleted movie", zap.String("movieID", rec.ID))
	return nil
}
