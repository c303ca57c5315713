package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blacktop/xsync/internal/logutil"
	"github.com/blacktop/xsync/internal/xpost"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the snapshot when no key is configured.
const DefaultRedisKey = "xsync:post-cache"

// RedisStore keeps the cache snapshot as a single JSON value in Redis, for
// deployments without a persistent disk.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, key), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load fetches the snapshot. A missing key or any Redis error yields an empty
// cache.
func (s *RedisStore) Load(ctx context.Context) xpost.PostCache {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logutil.Debugf("load post cache from redis: %v", err)
		}
		return xpost.PostCache{}
	}
	return xpost.ParseCache(data)
}

// Save overwrites the snapshot.
func (s *RedisStore) Save(ctx context.Context, cache xpost.PostCache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encode post cache: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save post cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
