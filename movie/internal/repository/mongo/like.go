package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel"

	"filmdex/movie/pkg/model"
)

const likeTracerID = "like-repository-mongo"

// LikeRepository persists like rows in the likes collection, keyed by the
// movieID-userID composite id.
type LikeRepository struct {
	coll *mongo.Collection
}

// NewLikeRepository creates a like repository on the given database.
func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{coll: db.Collection("likes")}
}

type likeDoc struct {
	ID        string    `bson:"_id"`
	MovieID   string    `bson:"movieId"`
	UserID    string    `bson:"userId"`
	CreatedAt time.Time `bson:"createdAt"`
}

func likeToDoc(l *model.Like) *likeDoc {
	return &likeDoc{ID: l.ID, MovieID: l.MovieID, UserID: l.UserID, CreatedAt: l.CreatedAt}
}

// Upsert writes a like row, replacing any existing row with the same key.
func (r *LikeRepository) Upsert(ctx context.Context, like *model.Like) error {
	ctx, span := otel.Tracer(likeTracerID).Start(ctx, "LikeRepository/Upsert")
	defer span.End()

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": like.ID}, likeToDoc(like), options.Replace().SetUpsert(true))
	return err
}

// DeleteByID removes a like row by its composite key. Missing rows are not an
// error: an unlike for a user who never liked is a no-op.
func (r *LikeRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(likeTracerID).Start(ctx, "LikeRepository/DeleteByID")
	defer span.End()

	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteAllByMovie removes every like row for a movie.
func (r *LikeRepository) DeleteAllByMovie(ctx context.Context, movieID string) error {
	ctx, span := otel.Tracer(likeTracerID).Start(ctx, "LikeRepository/DeleteAllByMovie")
	defer span.End()

	_, err := r.coll.DeleteMany(ctx, bson.M{"movieId": movieID})
	return err
}

// CountByMovie counts the like rows for a movie.
func (r *LikeRepository) CountByMovie(ctx context.Context, movieID string) (int64, error) {
	ctx, span := otel.Tracer(likeTracerID).Start(ctx, "LikeRepository/CountByMovie")
	defer span.End()

	return r.coll.CountDocuments(ctx, bson.M{"movieId": movieID})
}
