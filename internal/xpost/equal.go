package xpost

import (
	"github.com/blacktop/xsync/internal/logutil"
	"github.com/bluesky-social/indigo/api/bsky"
	mastodonapi "github.com/mattn/go-mastodon"
)

// Equal reports whether a Mastodon status and a Bluesky post carry the same
// content. A status that was shortened when it was mirrored to Bluesky still
// matches its copy.
func Equal(status *mastodonapi.Status, item *bsky.FeedDefs_FeedViewPost) bool {
	if isMastodonReply(status) != isBlueskyReply(item) {
		return false
	}

	blueskyText, err := BlueskyText(item)
	if err != nil {
		logutil.Debugf("compare posts: %v", err)
		return false
	}
	want := comparisonText(blueskyText)

	fulltext := MastodonText(status)
	if comparisonText(fulltext) == want {
		return true
	}

	return comparisonText(ShortenForBluesky(fulltext, statusURL(status))) == want
}

func isMastodonReply(status *mastodonapi.Status) bool {
	return status.InReplyToID != nil
}

// statusURL links to the boosted status for boosts.
func statusURL(status *mastodonapi.Status) string {
	if status.Reblog != nil {
		return status.Reblog.URL
	}
	return status.URL
}
