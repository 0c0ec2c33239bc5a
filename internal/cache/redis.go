package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

// RedisCache keeps the TTL short because a cached cart freezes the product
// snapshots inside it; mutations invalidate eagerly, price drift is bounded
// by the TTL.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	key := cacheKey(userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if e2 := json.Unmarshal(data, &cart); e2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", e2)
	}

	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, userID int64, cart *domain.Cart) error {
	key := cacheKey(userID)
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	ttl := r.baseTTL + jitter
	if e2 := r.client.Set(ctx, key, jsonCart, ttl).Err(); e2 != nil {
		return fmt.Errorf("redis set failed: %w", e2)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
