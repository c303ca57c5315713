package xpost

import (
	"github.com/bluesky-social/indigo/api/bsky"
	mastodonapi "github.com/mattn/go-mastodon"
)

// BlueskyAttachments returns the full size images embedded in a post.
func BlueskyAttachments(item *bsky.FeedDefs_FeedViewPost) []NewMedia {
	if item == nil || item.Post == nil || item.Post.Embed == nil {
		return nil
	}
	embed := item.Post.Embed
	images := embed.EmbedImages_View
	if images == nil && embed.EmbedRecordWithMedia_View != nil && embed.EmbedRecordWithMedia_View.Media != nil {
		images = embed.EmbedRecordWithMedia_View.Media.EmbedImages_View
	}
	if images == nil {
		return nil
	}

	media := make([]NewMedia, 0, len(images.Images))
	for _, image := range images.Images {
		if image == nil {
			continue
		}
		media = append(media, NewMedia{URL: image.Fullsize, AltText: image.Alt})
	}
	return media
}

// MastodonAttachments returns the media of a status. Boosts carry their media
// on the boosted status.
func MastodonAttachments(status *mastodonapi.Status) []NewMedia {
	attachments := status.MediaAttachments
	if len(attachments) == 0 && status.Reblog != nil {
		attachments = status.Reblog.MediaAttachments
	}

	media := make([]NewMedia, 0, len(attachments))
	for _, attachment := range attachments {
		media = append(media, NewMedia{
			URL: attachment.URL,
			// Bluesky accepts at most 1000 characters of alt text.
			AltText: truncateAltText(attachment.Description),
		})
	}
	return media
}
