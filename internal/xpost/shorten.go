package xpost

import (
	"strings"
	"unicode"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/rivo/uniseg"
)

const (
	// BlueskyLimit is the maximum post length on Bluesky in graphemes.
	BlueskyLimit = 300
	// MastodonLimit is the default status length on Mastodon in graphemes.
	MastodonLimit = 500

	ellipsis            = "… "
	blueskyProfileURL   = "https://bsky.app/profile/"
	maxAltTextCodepoint = 1000
)

// Length returns the number of user-perceived characters in text.
func Length(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// ShortenForBluesky drops trailing words until text fits into a Bluesky post.
// When sourceURL is set it is appended after an ellipsis to every shortened
// result so readers can find the full text.
func ShortenForBluesky(text, sourceURL string) string {
	return shorten(text, BlueskyLimit, sourceURL)
}

// ShortenForMastodon shortens text that is too long for Mastodon and links
// back to the full post on Bluesky.
func ShortenForMastodon(text string, post *bsky.FeedDefs_PostView) string {
	if Length(text) <= MastodonLimit {
		return text
	}
	return shorten(text, MastodonLimit, Permalink(post))
}

// Permalink builds the bsky.app web URL of a post, for example
// at://did:plc:i7uartkbj7ktzo4tj4rq6oyi/app.bsky.feed.post/3lb3f2ko4rc23
// becomes https://bsky.app/profile/<handle>/post/3lb3f2ko4rc23.
func Permalink(post *bsky.FeedDefs_PostView) string {
	if post == nil {
		return ""
	}
	var handle string
	if post.Author != nil {
		handle = post.Author.Handle
	}
	rkey := post.Uri
	if i := strings.LastIndex(rkey, "/"); i >= 0 {
		rkey = rkey[i+1:]
	}
	return blueskyProfileURL + handle + "/post/" + rkey
}

func shorten(text string, limit int, link string) string {
	shortened := strings.TrimSpace(text)
	out := shortened
	for Length(out) > limit {
		next, ok := dropLastWord(shortened)
		if !ok {
			// a single word is left, nothing more can be removed
			break
		}
		shortened = next
		out = shortened
		if link != "" {
			out = shortened + ellipsis + link
		}
	}
	return out
}

func dropLastWord(text string) (string, bool) {
	i := strings.LastIndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, false
	}
	return strings.TrimSpace(text[:i]), true
}

func truncateAltText(alt string) string {
	n := 0
	for i := range alt {
		if n == maxAltTextCodepoint {
			return alt[:i]
		}
		n++
	}
	return alt
}
