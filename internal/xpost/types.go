package xpost

import (
	"context"

	"github.com/bluesky-social/indigo/api/bsky"
	mastodonapi "github.com/mattn/go-mastodon"
)

// NewStatus is a post that should be created on one of the two networks.
type NewStatus struct {
	Text        string
	Attachments []NewMedia
	// Replies and InReplyToID are reserved for thread sync and never set.
	Replies     []NewStatus
	InReplyToID string
}

// NewMedia links to an attachment that should be downloaded and re-uploaded.
type NewMedia struct {
	URL     string
	AltText string
}

// SyncOptions controls which posts are mirrored.
type SyncOptions struct {
	Reblogs         bool   `yaml:"sync_reblogs"`
	Reposts         bool   `yaml:"sync_reposts"`
	HashtagBluesky  string `yaml:"sync_hashtag_bluesky"`
	HashtagMastodon string `yaml:"sync_hashtag_mastodon"`
}

// Updates holds the posts to create on each network, oldest first.
type Updates struct {
	Bluesky  []NewStatus
	Mastodon []NewStatus
}

// Empty reports whether there is nothing to post.
func (u Updates) Empty() bool {
	return len(u.Bluesky) == 0 && len(u.Mastodon) == 0
}

// Poster abstracts a social network that can publish content.
type Poster interface {
	Name() string
	Post(ctx context.Context, status NewStatus) error
}

// MastodonAccount reads and writes the Mastodon side of the sync.
type MastodonAccount interface {
	Poster
	Statuses(ctx context.Context) ([]*mastodonapi.Status, error)
}

// BlueskyAccount reads and writes the Bluesky side of the sync.
type BlueskyAccount interface {
	Poster
	Feed(ctx context.Context) ([]*bsky.FeedDefs_FeedViewPost, error)
}

// CacheStore persists the post cache between runs.
type CacheStore interface {
	Load(ctx context.Context) PostCache
	Save(ctx context.Context, cache PostCache) error
}
