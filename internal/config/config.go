// Package config loads xsync settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blacktop/xsync/internal/cache"
	"github.com/blacktop/xsync/internal/xpost"
	"github.com/blacktop/xsync/internal/xpost/bluesky"
	"github.com/blacktop/xsync/internal/xpost/mastodon"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read when no config path is given.
	DefaultFile = "xsync.yaml"
	// DefaultPostInterval spaces out posts within one run.
	DefaultPostInterval = time.Second

	envSyncReblogs     = "XSYNC_SYNC_REBLOGS"
	envSyncReposts     = "XSYNC_SYNC_REPOSTS"
	envHashtagBluesky  = "XSYNC_SYNC_HASHTAG_BLUESKY"
	envHashtagMastodon = "XSYNC_SYNC_HASHTAG_MASTODON"
	envCacheFile       = "XSYNC_CACHE_FILE"
	envRedisURL        = "XSYNC_REDIS_URL"
	envPostInterval    = "XSYNC_POST_INTERVAL"
)

// Config is the full xsync configuration. Provider credentials are merged
// with their XSYNC_* variables by the providers themselves.
type Config struct {
	Mastodon     mastodon.Config   `yaml:"mastodon"`
	Bluesky      bluesky.Config    `yaml:"bluesky"`
	Sync         xpost.SyncOptions `yaml:"sync"`
	Cache        cache.Config      `yaml:"cache"`
	PostInterval time.Duration     `yaml:"post_interval"`
}

// Load reads path and applies environment overrides. A missing file is not
// an error unless required is set.
func Load(path string, required bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Cache:        cache.Config{File: cache.DefaultFile},
		PostInterval: DefaultPostInterval,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	if v, ok, err := getenvBool(envSyncReblogs); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Sync.Reblogs = v
	}
	if v, ok, err := getenvBool(envSyncReposts); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Sync.Reposts = v
	}
	if v, ok := os.LookupEnv(envHashtagBluesky); ok {
		c.Sync.HashtagBluesky = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(envHashtagMastodon); ok {
		c.Sync.HashtagMastodon = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(envCacheFile)); v != "" {
		c.Cache.File = v
	}
	if v := strings.TrimSpace(os.Getenv(envRedisURL)); v != "" {
		c.Cache.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envPostInterval)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envPostInterval, err))
		} else {
			c.PostInterval = d
		}
	}

	return errors.Join(errs...)
}

func getenvBool(key string) (value, ok bool, err error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}
