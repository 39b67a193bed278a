package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig selects the deployment and database the store works on.
// Zero pool sizes fall back to the driver defaults.
type MongoConfig struct {
	URI      string
	Database string
	AppName  string
	MaxPool  uint64
	MinPool  uint64
}

// Connect dials MongoDB and waits until a primary answers, so callers fail
// at startup rather than on the first request.
func Connect(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is empty")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetRetryWrites(true).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.MaxPool > 0 {
		opts.SetMaxPoolSize(cfg.MaxPool)
	}
	if cfg.MinPool > 0 {
		opts.SetMinPoolSize(cfg.MinPool)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := Ping(ctx, client.Database(cfg.Database)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Ping checks that the primary behind db is reachable. It backs the health
// endpoint.
func Ping(ctx context.Context, db *mongo.Database) error {
	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// Disconnect closes the client behind db, giving in-flight operations up to
// timeout to finish.
func Disconnect(db *mongo.Database, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
