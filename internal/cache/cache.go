package cache

import (
	"context"
	"errors"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartCache holds read-through copies of buyer carts.
type CartCache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	Set(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache always misses. It stands in when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, primitive.ObjectID) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, primitive.ObjectID, *domain.Cart) error { return nil }

func (NoopCache) Delete(context.Context, primitive.ObjectID) error { return nil }
