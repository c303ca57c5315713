package xpost

import (
	"slices"
	"strings"

	"github.com/blacktop/xsync/internal/logutil"
	"github.com/bluesky-social/indigo/api/bsky"
	mastodonapi "github.com/mattn/go-mastodon"
)

// direction describes one half of the sync: posts from a source network that
// are mirrored to a target network.
type direction[S, T any] struct {
	target string

	isReply   func(S) bool
	isShare   func(S) bool
	syncShare bool

	// text returns the full normalized text used for hashtag filtering,
	// post returns what is actually posted to the target.
	text func(S) (string, error)
	post func(S, string) string

	attachments func(S) []NewMedia
	equal       func(S, T) bool
	hashtag     string

	// skipMentions drops posts that start with a mention. They are
	// addressed to someone and not meant for the other network.
	skipMentions bool
}

// planDirection walks source newest first and collects posts until it finds
// one that already exists on the target. Everything older is assumed synced.
func planDirection[S, T any](sources []S, targets []T, d direction[S, T]) []NewStatus {
	var out []NewStatus
	for _, source := range sources {
		if d.isReply(source) {
			continue
		}
		if !d.syncShare && d.isShare(source) {
			continue
		}

		text, err := d.text(source)
		if err != nil {
			logutil.Warnf("skipping post for %s: %v", d.target, err)
			continue
		}
		post := d.post(source, text)
		if d.skipMentions && strings.HasPrefix(post, "@") {
			continue
		}

		if slices.ContainsFunc(targets, func(target T) bool { return d.equal(source, target) }) {
			break
		}

		if d.hashtag != "" && !strings.Contains(text, d.hashtag) {
			continue
		}

		out = append(out, NewStatus{
			Text:        post,
			Attachments: d.attachments(source),
		})
	}
	// oldest first
	slices.Reverse(out)
	return out
}

// DeterminePosts compares both timelines and returns the posts that are
// missing on each network. Both inputs are ordered newest first, as returned
// by the APIs. The result is ordered oldest first so posts are created in
// their original order.
func DeterminePosts(statuses []*mastodonapi.Status, feed []*bsky.FeedDefs_FeedViewPost, opts SyncOptions) Updates {
	toots := planDirection(feed, statuses, direction[*bsky.FeedDefs_FeedViewPost, *mastodonapi.Status]{
		target:      "mastodon",
		isReply:     isBlueskyReply,
		isShare:     isRepost,
		syncShare:   opts.Reposts,
		text:        BlueskyText,
		post:        func(_ *bsky.FeedDefs_FeedViewPost, text string) string { return text },
		attachments: BlueskyAttachments,
		equal: func(item *bsky.FeedDefs_FeedViewPost, status *mastodonapi.Status) bool {
			return !isMastodonReply(status) && Equal(status, item)
		},
		hashtag: opts.HashtagBluesky,
	})

	posts := planDirection(statuses, feed, direction[*mastodonapi.Status, *bsky.FeedDefs_FeedViewPost]{
		target:    "bluesky",
		isReply:   isMastodonReply,
		isShare:   func(status *mastodonapi.Status) bool { return status.Reblog != nil },
		syncShare: opts.Reblogs,
		text:      func(status *mastodonapi.Status) (string, error) { return MastodonText(status), nil },
		post: func(status *mastodonapi.Status, text string) string {
			return ShortenForBluesky(text, statusURL(status))
		},
		attachments:  MastodonAttachments,
		equal:        Equal,
		hashtag:      opts.HashtagMastodon,
		skipMentions: true,
	})

	return Updates{Bluesky: posts, Mastodon: toots}
}
