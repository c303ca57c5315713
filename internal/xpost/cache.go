package xpost

import (
	"encoding/json"
	"slices"

	"github.com/blacktop/xsync/internal/logutil"
)

// CacheLimit is the number of cached texts above which a loaded cache is
// thrown away, so the same text can be posted again at a later date.
const CacheLimit = 150

// PostCache is the set of texts that were posted in previous runs.
type PostCache map[string]struct{}

// NewPostCache returns a cache holding texts.
func NewPostCache(texts ...string) PostCache {
	cache := make(PostCache, len(texts))
	for _, text := range texts {
		cache.Add(text)
	}
	return cache
}

// ParseCache decodes a JSON array of strings. Invalid input and caches that
// grew beyond CacheLimit yield an empty cache.
func ParseCache(data []byte) PostCache {
	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		logutil.Debugf("parse post cache: %v", err)
		return PostCache{}
	}
	cache := NewPostCache(texts...)
	if len(cache) > CacheLimit {
		logutil.Debugf("post cache holds %d entries, starting over", len(cache))
		return PostCache{}
	}
	return cache
}

func (c PostCache) Add(text string) {
	c[text] = struct{}{}
}

func (c PostCache) Contains(text string) bool {
	_, ok := c[text]
	return ok
}

// Texts returns the cached texts in sorted order.
func (c PostCache) Texts() []string {
	texts := make([]string, 0, len(c))
	for text := range c {
		texts = append(texts, text)
	}
	slices.Sort(texts)
	return texts
}

func (c PostCache) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Texts())
}

// FilterPosted drops posts whose text was already posted before. This
// prevents double posting and sync loops when the matcher misses a copy.
func FilterPosted(updates Updates, cache PostCache) Updates {
	if updates.Empty() {
		return updates
	}
	return Updates{
		Bluesky:  filterQueue("Bluesky", updates.Bluesky, cache),
		Mastodon: filterQueue("Mastodon", updates.Mastodon, cache),
	}
}

func filterQueue(destination string, queue []NewStatus, cache PostCache) []NewStatus {
	var kept []NewStatus
	for _, status := range queue {
		if cache.Contains(status.Text) {
			logutil.Warnf("preventing double posting to %s: %s", destination, status.Text)
			continue
		}
		kept = append(kept, status)
	}
	return kept
}
