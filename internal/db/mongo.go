// Package db provides MongoDB client construction shared by the services.
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// Connect opens a MongoDB client with write-majority durability and sane
// connection timeouts.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary()).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Ping verifies the connection is alive.
func Ping(ctx context.Context, client *mongo.Client) error {
	return client.Database("admin").RunCommand(ctx, map[string]int{"ping": 1}).Err()
}
