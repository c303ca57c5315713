package xpost

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestShortenForMastodonLink(t *testing.T) {
	item := readSkeet(t, "testdata/bsky_quote_post.json")
	text := strings.Repeat("a ", 251)

	want := strings.Repeat("a ", 223) + "a… https://bsky.app/profile/klau.si/post/3lb3f2ko4rc23"
	got := ShortenForMastodon(text, item.Post)
	if got != want {
		t.Errorf("ShortenForMastodon() = %q, want %q", got, want)
	}
	if n := Length(got); n > MastodonLimit {
		t.Errorf("expected at most %d characters, got %d", MastodonLimit, n)
	}
}

func TestShortenForMastodonFits(t *testing.T) {
	text := strings.Repeat("b", 500)
	if got := ShortenForMastodon(text, skeet("1", text).Post); got != text {
		t.Errorf("expected text of exactly 500 characters to stay unchanged")
	}
}

func TestShortenForBluesky(t *testing.T) {
	text := strings.Repeat("lorem ", 80)
	link := "https://mastodon.social/@me/1"

	got := ShortenForBluesky(text, link)
	if n := Length(got); n > BlueskyLimit {
		t.Fatalf("expected at most %d characters, got %d", BlueskyLimit, n)
	}
	if !strings.HasSuffix(got, "lorem… "+link) {
		t.Errorf("expected link suffix, got %q", got)
	}

	// without a link words are dropped without an ellipsis
	got = ShortenForBluesky(text, "")
	if n := Length(got); n > BlueskyLimit {
		t.Fatalf("expected at most %d characters, got %d", BlueskyLimit, n)
	}
	if strings.Contains(got, "…") || !strings.HasSuffix(got, "lorem") {
		t.Errorf("unexpected shortened text %q", got)
	}
}

func TestShortenForBlueskyFits(t *testing.T) {
	if got := ShortenForBluesky("  short post \n", "https://mastodon.social/@me/1"); got != "short post" {
		t.Errorf("ShortenForBluesky() = %q, want %q", got, "short post")
	}
}

func TestShortenCountsGraphemes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"abc", 3},
		{"e\u0301", 1},
		{"\U0001F44D\U0001F3FD", 1},
		{"\U0001F468\u200D\U0001F469\u200D\U0001F467", 1},
		{"\U0001F1E9\U0001F1EA flag", 6},
	}
	for _, tt := range tests {
		if got := Length(tt.text); got != tt.want {
			t.Errorf("Length(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}

	text := strings.Repeat("👍🏽 ", 200)
	got := ShortenForBluesky(text, "")
	if n := Length(got); n > BlueskyLimit || n < BlueskyLimit-2 {
		t.Errorf("expected close to %d characters, got %d", BlueskyLimit, n)
	}
	if !strings.HasSuffix(got, "👍🏽") {
		t.Errorf("expected a whole emoji at the end, got %q", got[len(got)-8:])
	}
}

func TestShortenSingleWord(t *testing.T) {
	word := strings.Repeat("x", 400)
	if got := ShortenForBluesky(word, "https://mastodon.social/@me/1"); got != word {
		t.Errorf("expected a single word to be returned unchanged")
	}

	got := ShortenForBluesky("tiny "+word, "https://mastodon.social/@me/1")
	if got != "tiny… https://mastodon.social/@me/1" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestShortenBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	link := "https://mastodon.social/@someone/113512345678901234"
	item := skeet("3lb3f2ko4rc23", "")

	for i := 0; i < 200; i++ {
		var b strings.Builder
		words := 1 + rng.IntN(200)
		for w := 0; w < words; w++ {
			b.WriteString(strings.Repeat("\u00fc", 1+rng.IntN(20)))
			if rng.IntN(10) == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		text := b.String()

		if got := ShortenForBluesky(text, link); Length(got) > BlueskyLimit {
			t.Fatalf("bluesky result has %d characters for input of %d", Length(got), Length(text))
		}
		if got := ShortenForMastodon(text, item.Post); Length(got) > MastodonLimit {
			t.Fatalf("mastodon result has %d characters for input of %d", Length(got), Length(text))
		}
	}
}

func TestPermalink(t *testing.T) {
	got := Permalink(skeet("3lb3f2ko4rc23", "").Post)
	if want := "https://bsky.app/profile/klau.si/post/3lb3f2ko4rc23"; got != want {
		t.Errorf("Permalink() = %q, want %q", got, want)
	}
}
