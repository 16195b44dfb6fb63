package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kitchenstock/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "ks"

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type CacheService interface {
	// Inventory snapshot mirror
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context, tenantCode string) (*models.Snapshot, error)

	// Recipe costing
	GetRecipeCost(ctx context.Context, tenantCode, recipeID string) (*models.RecipeCost, error)
	SetRecipeCost(ctx context.Context, tenantCode string, cost *models.RecipeCost) error
	InvalidateRecipeCosts(ctx context.Context, tenantCode string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantCode string) error
}

type CacheOptions struct {
	SnapshotTTL time.Duration
	CostTTL     time.Duration
}

type redisCacheService struct {
	client Client
	opts   CacheOptions
}

// NewRedisClient builds a client from an address that may carry a redis://
// or rediss:// scheme.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if opts, err := redis.ParseURL(addr); err == nil {
			if password != "" {
				opts.Password = password
			}
			return redis.NewClient(opts)
		}
		addr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("address", addr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("address", addr).Msg("redis connection established")
	}
	return client
}

func NewRedisCacheService(client Client, opts CacheOptions) CacheService {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 7 * 24 * time.Hour
	}
	if opts.CostTTL <= 0 {
		opts.CostTTL = 10 * time.Minute
	}
	return &redisCacheService{client: client, opts: opts}
}

func snapshotKey(tenantCode string) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, tenantCode)
}

func recipeCostKey(tenantCode, recipeID string) string {
	return fmt.Sprintf("%s:recipecost:%s:%s", keyPrefix, tenantCode, recipeID)
}

func (r *redisCacheService) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, snapshotKey(snap.TenantCode), data, r.opts.SnapshotTTL).Err()
}

func (r *redisCacheService) LoadSnapshot(ctx context.Context, tenantCode string) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(tenantCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *redisCacheService) GetRecipeCost(ctx context.Context, tenantCode, recipeID string) (*models.RecipeCost, error) {
	data, err := r.client.Get(ctx, recipeCostKey(tenantCode, recipeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var cost models.RecipeCost
	if err := json.Unmarshal(data, &cost); err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *redisCacheService) SetRecipeCost(ctx context.Context, tenantCode string, cost *models.RecipeCost) error {
	data, err := json.Marshal(cost)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, recipeCostKey(tenantCode, cost.RecipeID.String()), data, r.opts.CostTTL).Err()
}

func (r *redisCacheService) InvalidateRecipeCosts(ctx context.Context, tenantCode string) error {
	return r.deleteMatching(ctx, fmt.Sprintf("%s:recipecost:%s:*", keyPrefix, tenantCode))
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantCode string) error {
	if err := r.client.Del(ctx, snapshotKey(tenantCode)).Err(); err != nil {
		return err
	}
	return r.InvalidateRecipeCosts(ctx, tenantCode)
}

func (r *redisCacheService) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
