// Package mongo implements the account user store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.opentelemetry.io/otel"

	"filmdex/account/internal/repository"
	"filmdex/account/pkg/model"
)

const tracerID = "user-repository-mongo"

// UserRepository persists users in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a user repository on the given database.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash []byte    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func userToDoc(u *model.User) *userDoc {
	return &userDoc{ID: u.ID, Email: u.Email, Name: u.Name, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func userFromDoc(d *userDoc) *model.User {
	return &model.User{ID: d.ID, Email: d.Email, Name: d.Name, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// Create inserts a new user, rejecting duplicate emails.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "UserRepository/Create")
	defer span.End()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return err
	}
	if n > 0 {
		return repository.ErrAlreadyExists
	}
	_, err = r.coll.InsertOne(ctx, userToDoc(user))
	return err
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "UserRepository/GetByEmail")
	defer span.End()

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return userFromDoc(&doc), nil
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "UserRepository/Get")
	defer span.End()

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return userFromDoc(&doc), nil
}
