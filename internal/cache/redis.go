package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedisOptions tune the cart cache. Zero values take the defaults.
type RedisOptions struct {
	// Prefix namespaces keys; carts live under <Prefix><userID>.
	Prefix string
	TTL    time.Duration
	// Jitter is the upper bound of the random extra expiry. Negative
	// disables it.
	Jitter time.Duration
}

const (
	DefaultPrefix = "artverse:cart:"
	DefaultTTL    = 15 * time.Minute
	DefaultJitter = 5 * time.Minute
)

// RedisCache stores carts as JSON strings.
type RedisCache struct {
	client redis.UniversalClient
	opts   RedisOptions
}

func NewRedisCache(client redis.UniversalClient, opts RedisOptions) *RedisCache {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Jitter < 0 {
		opts.Jitter = 0
	} else if opts.Jitter == 0 {
		opts.Jitter = DefaultJitter
	}
	return &RedisCache{client: client, opts: opts}
}

func (c *RedisCache) Get(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cart cache get %s: %w", userID.Hex(), err)
	}

	cart := new(domain.Cart)
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("cart cache decode %s: %w", userID.Hex(), err)
	}
	return cart, nil
}

// Set writes the cart with a randomised expiry so carts cached in the same
// burst do not all fall out at once.
func (c *RedisCache) Set(ctx context.Context, userID primitive.ObjectID, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("cart cache encode %s: %w", userID.Hex(), err)
	}
	if err := c.client.Set(ctx, c.key(userID), raw, c.expiry()).Err(); err != nil {
		return fmt.Errorf("cart cache set %s: %w", userID.Hex(), err)
	}
	return nil
}

// Delete drops the cached cart. A missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, userID primitive.ObjectID) error {
	if err := c.client.Unlink(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("cart cache delete %s: %w", userID.Hex(), err)
	}
	return nil
}

func (c *RedisCache) key(userID primitive.ObjectID) string {
	return c.opts.Prefix + userID.Hex()
}

func (c *RedisCache) expiry() time.Duration {
	if c.opts.Jitter == 0 {
		return c.opts.TTL
	}
	return c.opts.TTL + time.Duration(rand.Int63n(int64(c.opts.Jitter)))
}
