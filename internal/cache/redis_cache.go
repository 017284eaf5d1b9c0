package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "risk:assessment:"

// RedisCache stores assessments as JSON under a per-borrower key
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(borrowerID string) string {
	return keyPrefix + borrowerID
}

func (r *RedisCache) Get(ctx context.Context, borrowerID string) (*models.RiskAssessment, bool) {
	val, err := r.client.Get(ctx, key(borrowerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var a models.RiskAssessment
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (r *RedisCache) Set(ctx context.Context, a *models.RiskAssessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}
	if err := r.client.Set(ctx, key(a.BorrowerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache assessment: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, borrowerID string) error {
	if err := r.client.Del(ctx, key(borrowerID)).Err(); err != nil {
		return fmt.Errorf("failed to evict assessment: %w", err)
	}
	return nil
}
