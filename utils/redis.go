package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andy-arrow/vocal-excellence-backend/models"
)

// ApplicationCacheTTL bounds how long a cached application row may serve
// reads before falling back to storage.
const ApplicationCacheTTL = 24 * time.Hour

type RedisClient interface {
	GetFromCache(ctx context.Context, key string) (string, error)
	SetToCache(ctx context.Context, key string, value string, expiration time.Duration) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string) (RedisClient, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if !strings.Contains(addr, ":") {
		addr = addr + ":6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisClient{client: client}, nil
}

func (r *redisClient) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *redisClient) GetFromCache(ctx context.Context, key string) (string, error) {
	if r.client == nil {
		return "", errors.New("Redis client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", redis.Nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get value from Redis: %w", err)
	}

	return val, nil
}

func (r *redisClient) SetToCache(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.client == nil {
		return errors.New("Redis client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Set(ctx, key, value, expiration).Err()
}

// ApplicationCacheKey is the cache key for one application row.
func ApplicationCacheKey(id uint) string {
	return fmt.Sprintf("application:%d", id)
}

// CacheApplication stores a serialized application under its cache key.
func CacheApplication(ctx context.Context, cache RedisClient, app *models.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return err
	}
	return cache.SetToCache(ctx, ApplicationCacheKey(app.ID), string(data), ApplicationCacheTTL)
}
