package xpost

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	mastodonapi "github.com/mattn/go-mastodon"
	"golang.org/x/net/html"
)

const (
	shareMarker = "♻️"
	quoteMarker = "💬"
)

var markupReplacer = strings.NewReplacer(
	"<br />", "\n",
	"<br>", "\n",
	"</p><p>", "\n\n",
	"<p>", "",
	"</p>", "",
)

// MastodonText returns the plain text of a status. Boosts are prefixed with
// the original author, markup is removed and mentions are escaped so they do
// not turn into mentions on Bluesky.
func MastodonText(status *mastodonapi.Status) string {
	content := status.Content
	if status.Reblog != nil {
		content = fmt.Sprintf("%s %s: %s", shareMarker, status.Reblog.Account.Username, status.Reblog.Content)
	}
	content = markupReplacer.Replace(content)
	content = stripTags(content)
	content = escapeMentions(content)
	return html.UnescapeString(content)
}

// BlueskyText returns the full text of a feed item with link facets expanded,
// reposts prefixed with the author and quoted posts inlined. The result is
// shortened to fit into a Mastodon status.
func BlueskyText(item *bsky.FeedDefs_FeedViewPost) (string, error) {
	if item == nil || item.Post == nil {
		return "", RecordError{Reason: "missing post view"}
	}
	post := item.Post

	text, err := recordText(post.Record, post.Uri)
	if err != nil {
		return "", err
	}

	if isRepost(item) {
		text = fmt.Sprintf("%s %s: %s", shareMarker, authorHandle(post.Author), text)
	}

	// Quotes are inlined one level deep only.
	if quote := quotedRecord(post.Embed); quote != nil {
		quoteText, err := recordText(quote.Value, quote.Uri)
		if err != nil {
			return "", err
		}
		text = fmt.Sprintf("%s\n\n%s %s: %s", text, quoteMarker, authorHandle(quote.Author), quoteText)
	}

	return ShortenForMastodon(text, post), nil
}

func recordText(record *util.LexiconTypeDecoder, uri string) (string, error) {
	if record == nil || record.Val == nil {
		return "", RecordError{URI: uri, Reason: "missing record"}
	}
	post, ok := record.Val.(*bsky.FeedPost)
	if !ok {
		return "", RecordError{URI: uri, Reason: fmt.Sprintf("unexpected record type %T", record.Val)}
	}
	return expandLinks(post, uri)
}

type linkSpan struct {
	start, end int64
	uri        string
}

// expandLinks replaces the byte range of every link facet with its target.
// Bluesky clients shorten long links in the visible text, the facet keeps the
// full URI.
func expandLinks(post *bsky.FeedPost, uri string) (string, error) {
	var spans []linkSpan
	for _, facet := range post.Facets {
		if facet == nil || facet.Index == nil {
			continue
		}
		for _, feature := range facet.Features {
			if feature != nil && feature.RichtextFacet_Link != nil {
				spans = append(spans, linkSpan{
					start: facet.Index.ByteStart,
					end:   facet.Index.ByteEnd,
					uri:   feature.RichtextFacet_Link.Uri,
				})
				break
			}
		}
	}
	if len(spans) == 0 {
		return post.Text, nil
	}

	// back to front so earlier offsets stay valid
	slices.SortFunc(spans, func(a, b linkSpan) int {
		return cmp.Compare(b.start, a.start)
	})

	text := []byte(post.Text)
	bound := int64(len(text))
	for _, span := range spans {
		if span.start < 0 || span.end < span.start || span.end > bound {
			return "", RecordError{URI: uri, Reason: fmt.Sprintf("facet range %d-%d out of bounds", span.start, span.end)}
		}
		text = slices.Concat(text[:span.start], []byte(span.uri), text[span.end:])
		bound = span.start
	}
	if !utf8.Valid(text) {
		return "", RecordError{URI: uri, Reason: "facet splits a multi-byte character"}
	}
	return string(text), nil
}

func isRepost(item *bsky.FeedDefs_FeedViewPost) bool {
	if item.Reason != nil && item.Reason.FeedDefs_ReasonRepost != nil {
		return true
	}
	return item.Post != nil && item.Post.Viewer != nil && item.Post.Viewer.Repost != nil
}

func isBlueskyReply(item *bsky.FeedDefs_FeedViewPost) bool {
	return item.Reply != nil
}

func quotedRecord(embed *bsky.FeedDefs_PostView_Embed) *bsky.EmbedRecord_ViewRecord {
	if embed == nil {
		return nil
	}
	view := embed.EmbedRecord_View
	if view == nil && embed.EmbedRecordWithMedia_View != nil {
		view = embed.EmbedRecordWithMedia_View.Record
	}
	if view == nil || view.Record == nil {
		return nil
	}
	return view.Record.EmbedRecord_ViewRecord
}

func authorHandle(author *bsky.ActorDefs_ProfileViewBasic) string {
	if author == nil {
		return ""
	}
	return author.Handle
}

func stripTags(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			// raw keeps entities, they are decoded after escaping
			b.Write(z.Raw())
		}
	}
}

// escapeMentions inserts a backslash before every "@" that follows a space.
// A mention at the very start of the text is left alone. Escaped input is
// returned unchanged.
func escapeMentions(text string) string {
	return strings.ReplaceAll(text, " @", ` \@`)
}

// comparisonText folds text into the form used to compare posts across
// networks. It is never posted.
func comparisonText(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "http://", "")
	text = strings.ReplaceAll(text, "https://", "")
	return strings.ReplaceAll(text, ` \@`, " @")
}
