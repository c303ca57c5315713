// Package cache persists the post cache that keeps xsync from posting the
// same text twice.
package cache

import (
	"context"
	"strings"

	"github.com/blacktop/xsync/internal/xpost"
)

// DefaultFile is the cache file used when nothing else is configured.
const DefaultFile = "post_cache.json"

// Config selects a cache backend. A Redis URL wins over the file.
type Config struct {
	File     string `yaml:"file"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
}

// New returns the store described by cfg.
func New(ctx context.Context, cfg Config) (xpost.CacheStore, error) {
	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		return NewRedisStore(ctx, url, cfg.RedisKey)
	}
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{Path: path}, nil
}
