package xpost

import (
	"errors"
	"strings"
	"testing"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	mastodonapi "github.com/mattn/go-mastodon"
)

func TestBlueskyQuotePost(t *testing.T) {
	item := readSkeet(t, "testdata/bsky_quote_post.json")

	updates := DeterminePosts(nil, []*bsky.FeedDefs_FeedViewPost{item}, SyncOptions{})
	if len(updates.Mastodon) != 1 {
		t.Fatalf("expected 1 toot, got %d", len(updates.Mastodon))
	}

	want := `Working on this and testing quote posts

💬 klau.si: Initial release of #Mastodon #Bluesky Sync 🚀  !

Synchronization of posts works, but I'm still testing things.

https://github.com/klausi/mastodon-bluesky-sync/releases/tag/v0.2.0`
	if got := updates.Mastodon[0].Text; got != want {
		t.Errorf("unexpected toot text:\n%s\nwant:\n%s", got, want)
	}
}

func TestMastodonText(t *testing.T) {
	tests := []struct {
		name   string
		status *mastodonapi.Status
		want   string
	}{
		{
			name:   "paragraph",
			status: toot("1", "<p>Hello world</p>"),
			want:   "Hello world",
		},
		{
			name:   "line breaks",
			status: toot("1", "<p>one</p><p>two<br />three<br>four</p>"),
			want:   "one\n\ntwo\nthree\nfour",
		},
		{
			name: "link",
			status: toot("1", `<p>see <a href="https://example.com/x" rel="nofollow noopener" target="_blank">`+
				`<span class="invisible">https://</span><span class="">example.com/x</span><span class="invisible"></span></a></p>`),
			want: "see https://example.com/x",
		},
		{
			name:   "entities",
			status: toot("1", "<p>Tom &amp; Jerry &lt;3 &quot;cheese&quot;</p>"),
			want:   `Tom & Jerry <3 "cheese"`,
		},
		{
			name: "mention",
			status: toot("1", `<p>Thanks <span class="h-card"><a href="https://mastodon.social/@bob" class="u-url mention">`+
				`@<span>bob</span></a></span> for this</p>`),
			want: `Thanks \@bob for this`,
		},
		{
			name:   "mention at start",
			status: toot("1", "<p>@alice hi there</p>"),
			want:   "@alice hi there",
		},
		{
			name:   "boost",
			status: boost("1", "alice", "<p>Original words</p>"),
			want:   "♻️ alice: Original words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MastodonText(tt.status); got != tt.want {
				t.Errorf("MastodonText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeMentions(t *testing.T) {
	tests := map[string]string{
		"hi @bob":          `hi \@bob`,
		"@bob hi":          "@bob hi",
		`hi \@bob`:         `hi \@bob`,
		"mail me@host.org": "mail me@host.org",
		"a @b and @c":      `a \@b and \@c`,
	}
	for in, want := range tests {
		got := escapeMentions(in)
		if got != want {
			t.Errorf("escapeMentions(%q) = %q, want %q", in, got, want)
		}
		if again := escapeMentions(got); again != got {
			t.Errorf("escapeMentions is not idempotent for %q: %q", in, again)
		}
	}
}

func TestComparisonText(t *testing.T) {
	got := comparisonText(`Visit HTTPS://Example.com and http://foo.org, thanks \@Bob`)
	want := "visit example.com and foo.org, thanks @bob"
	if got != want {
		t.Errorf("comparisonText() = %q, want %q", got, want)
	}
}

func TestBlueskyTextExpandsLinks(t *testing.T) {
	text := "Read example.com/a… and then example.org/b… today"
	item := skeet("1", text)
	record := item.Post.Record.Val.(*bsky.FeedPost)
	for short, uri := range map[string]string{
		"example.com/a…": "https://example.com/a/very/long/path",
		"example.org/b…": "https://example.org/b?q=1",
	} {
		start := strings.Index(text, short)
		record.Facets = append(record.Facets, &bsky.RichtextFacet{
			Index: &bsky.RichtextFacet_ByteSlice{ByteStart: int64(start), ByteEnd: int64(start + len(short))},
			Features: []*bsky.RichtextFacet_Features_Elem{
				{RichtextFacet_Link: &bsky.RichtextFacet_Link{Uri: uri}},
			},
		})
	}

	got, err := BlueskyText(item)
	if err != nil {
		t.Fatalf("BlueskyText failed: %v", err)
	}
	want := "Read https://example.com/a/very/long/path and then https://example.org/b?q=1 today"
	if got != want {
		t.Errorf("BlueskyText() = %q, want %q", got, want)
	}
}

func TestBlueskyTextRepost(t *testing.T) {
	got, err := BlueskyText(repost("1", "alice.bsky.social", "hello"))
	if err != nil {
		t.Fatalf("BlueskyText failed: %v", err)
	}
	if want := "♻️ alice.bsky.social: hello"; got != want {
		t.Errorf("BlueskyText() = %q, want %q", got, want)
	}
}

func TestBlueskyTextMalformed(t *testing.T) {
	wrongType := skeet("1", "")
	wrongType.Post.Record = &util.LexiconTypeDecoder{Val: &bsky.FeedLike{}}

	badRange := skeet("2", "short")
	badRange.Post.Record.Val.(*bsky.FeedPost).Facets = []*bsky.RichtextFacet{{
		Index: &bsky.RichtextFacet_ByteSlice{ByteStart: 2, ByteEnd: 40},
		Features: []*bsky.RichtextFacet_Features_Elem{
			{RichtextFacet_Link: &bsky.RichtextFacet_Link{Uri: "https://example.com"}},
		},
	}}

	noRecord := skeet("3", "")
	noRecord.Post.Record = nil

	for name, item := range map[string]*bsky.FeedDefs_FeedViewPost{
		"wrong type": wrongType,
		"bad range":  badRange,
		"no record":  noRecord,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BlueskyText(item)
			var recordErr RecordError
			if !errors.As(err, &recordErr) {
				t.Fatalf("expected RecordError, got %v", err)
			}
		})
	}
}

func TestAttachments(t *testing.T) {
	status := toot("1", "<p>pic</p>")
	status.MediaAttachments = []mastodonapi.Attachment{
		{URL: "https://files.example/1.png", Description: strings.Repeat("é", 1200)},
		{URL: "https://files.example/2.png"},
	}
	media := MastodonAttachments(status)
	if len(media) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(media))
	}
	if n := len([]rune(media[0].AltText)); n != 1000 {
		t.Errorf("expected alt text cut to 1000 characters, got %d", n)
	}
	if media[1].URL != "https://files.example/2.png" || media[1].AltText != "" {
		t.Errorf("unexpected second attachment: %+v", media[1])
	}

	boosted := boost("2", "alice", "<p>boosted pic</p>")
	boosted.Reblog.MediaAttachments = []mastodonapi.Attachment{{URL: "https://files.example/3.png", Description: "cat"}}
	if media := MastodonAttachments(boosted); len(media) != 1 || media[0].AltText != "cat" {
		t.Errorf("expected boost attachments, got %+v", media)
	}

	item := skeet("1", "pics")
	item.Post.Embed = &bsky.FeedDefs_PostView_Embed{
		EmbedImages_View: &bsky.EmbedImages_View{
			Images: []*bsky.EmbedImages_ViewImage{
				{Fullsize: "https://cdn.bsky.app/img/full/1.jpg", Thumb: "https://cdn.bsky.app/img/thumb/1.jpg", Alt: "a dog"},
			},
		},
	}
	media = BlueskyAttachments(item)
	if len(media) != 1 || media[0].URL != "https://cdn.bsky.app/img/full/1.jpg" || media[0].AltText != "a dog" {
		t.Errorf("unexpected bluesky attachments: %+v", media)
	}
}
