package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blacktop/xsync/internal/logutil"
	"github.com/blacktop/xsync/internal/xpost"
)

// FileStore keeps the cache as a JSON array in a local file.
type FileStore struct {
	Path string
}

// Load reads the cache file. A missing or broken file yields an empty cache.
func (s *FileStore) Load(_ context.Context) xpost.PostCache {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			logutil.Debugf("read post cache %s: %v", s.Path, err)
		}
		return xpost.PostCache{}
	}
	return xpost.ParseCache(data)
}

// Save replaces the cache file atomically.
func (s *FileStore) Save(_ context.Context, cache xpost.PostCache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encode post cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write post cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write post cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace post cache: %w", err)
	}
	return nil
}
