// Package mongo implements the movie service stores on MongoDB. Documents
// carry an explicit bson shape mapped to and from the domain model; the
// conditional update matches on both id and revision in a single ReplaceOne,
// so a concurrent writer that advanced the revision makes the write a no-op
// with zero modified documents.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel"

	"filmdex/movie/internal/repository"
	"filmdex/movie/pkg/model"
)

const movieTracerID = "movie-repository-mongo"

// MovieRepository persists movie records in the movies collection.
type MovieRepository struct {
	coll *mongo.Collection
}

// NewMovieRepository creates a movie repository on the given database.
func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{coll: db.Collection("movies")}
}

// movieDoc is the stored document shape.
type movieDoc struct {
	ID             string    `bson:"_id"`
	Revision       string    `bson:"revision"`
	Title          string    `bson:"title"`
	Description    string    `bson:"description"`
	Rating         float64   `bson:"rating"`
	ReleaseYear    int       `bson:"releaseYear"`
	Creator        string    `bson:"creator"`
	Deleted        bool      `bson:"deleted"`
	Dirty          bool      `bson:"dirty"`
	PendingLikes   []string  `bson:"pendingLikes"`
	PendingUnlikes []string  `bson:"pendingUnlikes"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func movieToDoc(r *model.MovieRecord) *movieDoc {
	return &movieDoc{
		ID:             r.ID,
		Revision:       r.Revision,
		Title:          r.Title,
		Description:    r.Description,
		Rating:         r.Rating,
		ReleaseYear:    r.ReleaseYear,
		Creator:        r.Creator,
		Deleted:        r.Deleted,
		Dirty:          r.Dirty,
		PendingLikes:   r.PendingLikes,
		PendingUnlikes: r.PendingUnlikes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func movieFromDoc(d *movieDoc) *model.MovieRecord {
	return &model.MovieRecord{
		ID:             d.ID,
		Revision:       d.Revision,
		Title:          d.Title,
		Description:    d.Description,
		Rating:         d.Rating,
		ReleaseYear:    d.ReleaseYear,
		Creator:        d.Creator,
		Deleted:        d.Deleted,
		Dirty:          d.Dirty,
		PendingLikes:   d.PendingLikes,
		PendingUnlikes: d.PendingUnlikes,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Get retrieves a movie record by id.
func (r *MovieRepository) Get(ctx context.Context, id string) (*model.MovieRecord, error) {
	ctx, span := otel.Tracer(movieTracerID).Start(ctx, "MovieRepository/Get")
	defer span.End()

	var doc movieDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return movieFromDoc(&doc), nil
}

// Create inserts a new movie record.
func (r *MovieRepository) Create(ctx context.Context, rec *model.MovieRecord) error {
	ctx, span := otel.Tracer(movieTracerID).Start(ctx, "MovieRepository/Create")
	defer span.End()

	_, err := r.coll.InsertOne(ctx, movieToDoc(rec))
	return err
}

// ConditionalUpdate replaces the full document, but only if the stored
// revision still equals expectedRevision. Returns the number of documents
// modified: 0 means a concurrent writer advanced the revision first and
// nothing was written.
func (r *MovieRepository) ConditionalUpdate(ctx context.Context, rec *model.MovieRecord, expectedRevision string) (int64, error) {
	ctx, span := otel.Tracer(movieTracerID).Start(ctx, "MovieRepository/ConditionalUpdate")
	defer span.End()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID, "revision": expectedRevision}, movieToDoc(rec))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete physically removes a movie record. Only the reconciler calls this,
// after observing the deleted tombstone.
func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(movieTracerID).Start(ctx, "MovieRepository/Delete")
	defer span.End()

	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindDirty returns up to limit records whose index projection is stale.
func (r *MovieRepository) FindDirty(ctx context.Context, limit int64) ([]*model.MovieRecord, error) {
	ctx, span := otel.Tracer(movieTracerID).Start(ctx, "MovieRepository/FindDirty")
	defer span.End()

	cur, err := r.coll.Find(ctx, bson.M{"dirty": true}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	recs := make([]*model.MovieRecord, 0, len(docs))
	for i := range docs {
		recs = append(recs, movieFromDoc(&docs[i]))
	}
	return recs, nil
}
