package xpost

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	mastodonapi "github.com/mattn/go-mastodon"
)

const testDID = "did:plc:i7uartkbj7ktzo4tj4rq6oyi"

func toot(id, content string) *mastodonapi.Status {
	return &mastodonapi.Status{
		ID:      mastodonapi.ID(id),
		URL:     "https://mastodon.social/@me/" + id,
		Content: content,
		Account: mastodonapi.Account{Username: "me"},
	}
}

func tootReply(id, content string) *mastodonapi.Status {
	status := toot(id, content)
	status.InReplyToID = "99"
	return status
}

func boost(id, username, content string) *mastodonapi.Status {
	status := toot(id, "")
	status.Reblog = &mastodonapi.Status{
		ID:      "orig" + mastodonapi.ID(id),
		URL:     "https://example.social/@" + username + "/orig" + id,
		Content: content,
		Account: mastodonapi.Account{Username: username},
	}
	return status
}

func skeet(rkey, text string) *bsky.FeedDefs_FeedViewPost {
	return &bsky.FeedDefs_FeedViewPost{
		Post: &bsky.FeedDefs_PostView{
			Uri:    "at://" + testDID + "/app.bsky.feed.post/" + rkey,
			Author: &bsky.ActorDefs_ProfileViewBasic{Did: testDID, Handle: "klau.si"},
			Record: &util.LexiconTypeDecoder{Val: &bsky.FeedPost{Text: text}},
		},
	}
}

func skeetReply(rkey, text string) *bsky.FeedDefs_FeedViewPost {
	item := skeet(rkey, text)
	item.Reply = &bsky.FeedDefs_ReplyRef{}
	return item
}

func repost(rkey, handle, text string) *bsky.FeedDefs_FeedViewPost {
	item := skeet(rkey, text)
	item.Post.Author.Handle = handle
	item.Reason = &bsky.FeedDefs_FeedViewPost_Reason{
		FeedDefs_ReasonRepost: &bsky.FeedDefs_ReasonRepost{
			By: &bsky.ActorDefs_ProfileViewBasic{Did: testDID, Handle: "klau.si"},
		},
	}
	return item
}

func readSkeet(t *testing.T, path string) *bsky.FeedDefs_FeedViewPost {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var item bsky.FeedDefs_FeedViewPost
	if err := json.Unmarshal(data, &item); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &item
}

func texts(queue []NewStatus) []string {
	out := make([]string, 0, len(queue))
	for _, status := range queue {
		out = append(out, status.Text)
	}
	return out
}
