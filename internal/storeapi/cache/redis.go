package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/goldshop/internal/domain"
)

const latestReviewsKey = "reviews:latest"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context) ([]domain.Review, error) {
	data, err := r.client.Get(ctx, latestReviewsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var reviews []domain.Review
	if err2 := json.Unmarshal(data, &reviews); err2 != nil {
		return nil, fmt.Errorf("unmarshal reviews failed: %w", err2)
	}

	return reviews, nil
}

func (r RedisCache) Set(ctx context.Context, reviews []domain.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Second
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, latestReviewsKey, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, latestReviewsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
