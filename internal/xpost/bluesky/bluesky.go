package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blacktop/xsync/internal/logutil"
	"github.com/blacktop/xsync/internal/xpost"
	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
)

const (
	envHandle      = "XSYNC_BLUESKY_HANDLE"
	envAppPassword = "XSYNC_BLUESKY_APP_PASSWORD"
	envPDSURL      = "XSYNC_BLUESKY_PDS_URL"

	providerName   = "bluesky"
	requestTimeout = 30 * time.Second

	// DefaultPDSURL is used when no PDS is configured.
	DefaultPDSURL = "https://bsky.social"

	feedLimit = 30
	maxImages = 4
)

var linkPattern = regexp.MustCompile(`https?://[^\s]+`)

// Config holds the account settings; environment variables take precedence.
type Config struct {
	Handle      string `yaml:"handle"`
	AppPassword string `yaml:"app_password"`
	PDSURL      string `yaml:"pds_url"`
}

// Client reads the author feed of and posts to a Bluesky account.
type Client struct {
	client *xrpc.Client
}

// New logs in to Bluesky.
func New(ctx context.Context, base Config) (*Client, error) {
	cfg, err := loadConfig(base)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	userAgent := "xsync/1"
	xrpcClient := &xrpc.Client{
		Client:    httpClient,
		Host:      cfg.PDSURL,
		UserAgent: &userAgent,
	}

	session, err := atproto.ServerCreateSession(ctx, xrpcClient, &atproto.ServerCreateSession_Input{
		Identifier: cfg.Handle,
		Password:   cfg.AppPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	xrpcClient.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}

	return &Client{client: xrpcClient}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// Feed returns the newest posts of the logged in account, newest first.
func (c *Client) Feed(ctx context.Context) ([]*bsky.FeedDefs_FeedViewPost, error) {
	out, err := bsky.FeedGetAuthorFeed(ctx, c.client, c.client.Auth.Did, "", "posts_with_replies", false, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("get author feed: %w", err)
	}
	return out.Feed, nil
}

// Post creates a new Bluesky post with links and image embeds.
func (c *Client) Post(ctx context.Context, status xpost.NewStatus) error {
	post := &bsky.FeedPost{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Text:      status.Text,
		Facets:    LinkFacets(status.Text),
	}

	if len(status.Attachments) > 0 {
		images, err := c.uploadImages(ctx, status.Attachments)
		if err != nil {
			return err
		}
		post.Embed = &bsky.FeedPost_Embed{
			EmbedImages: &bsky.EmbedImages{Images: images},
		}
	}

	_, err := atproto.RepoCreateRecord(ctx, c.client, &atproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       c.client.Auth.Did,
		Record: &util.LexiconTypeDecoder{
			Val: post,
		},
	})
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	return nil
}

func (c *Client) uploadImages(ctx context.Context, media []xpost.NewMedia) ([]*bsky.EmbedImages_Image, error) {
	if len(media) > maxImages {
		logutil.Warnf("bluesky allows %d images per post, dropping %d", maxImages, len(media)-maxImages)
		media = media[:maxImages]
	}

	images := make([]*bsky.EmbedImages_Image, 0, len(media))
	for _, m := range media {
		blob, err := c.uploadImage(ctx, m.URL)
		if err != nil {
			return nil, err
		}
		images = append(images, &bsky.EmbedImages_Image{
			Alt:   m.AltText,
			Image: blob,
		})
	}
	return images, nil
}

func (c *Client) uploadImage(ctx context.Context, url string) (*util.LexBlob, error) {
	data, err := xpost.DownloadMedia(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := atproto.RepoUploadBlob(ctx, c.client, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	if resp.Blob == nil {
		return nil, fmt.Errorf("upload blob: empty response")
	}

	return resp.Blob, nil
}

// LinkFacets marks every URL in text as a link so Bluesky renders it
// clickable. Offsets are in bytes.
func LinkFacets(text string) []*bsky.RichtextFacet {
	var facets []*bsky.RichtextFacet
	for _, loc := range linkPattern.FindAllStringIndex(text, -1) {
		uri := strings.TrimRight(text[loc[0]:loc[1]], ".,;:!?)")
		facets = append(facets, &bsky.RichtextFacet{
			Index: &bsky.RichtextFacet_ByteSlice{
				ByteStart: int64(loc[0]),
				ByteEnd:   int64(loc[0] + len(uri)),
			},
			Features: []*bsky.RichtextFacet_Features_Elem{
				{RichtextFacet_Link: &bsky.RichtextFacet_Link{Uri: uri}},
			},
		})
	}
	return facets
}

func loadConfig(base Config) (Config, error) {
	cfg := Config{
		Handle:      strings.TrimSpace(os.Getenv(envHandle)),
		AppPassword: strings.TrimSpace(os.Getenv(envAppPassword)),
		PDSURL:      strings.TrimSpace(os.Getenv(envPDSURL)),
	}

	if cfg.Handle == "" {
		cfg.Handle = strings.TrimSpace(base.Handle)
	}
	if cfg.AppPassword == "" {
		cfg.AppPassword = strings.TrimSpace(base.AppPassword)
	}
	if cfg.PDSURL == "" {
		cfg.PDSURL = strings.TrimSpace(base.PDSURL)
	}
	if cfg.PDSURL == "" {
		cfg.PDSURL = DefaultPDSURL
	}

	var missing []string
	if cfg.Handle == "" {
		missing = append(missing, envHandle)
	}
	if cfg.AppPassword == "" {
		missing = append(missing, envAppPassword)
	}

	if len(missing) > 0 {
		return Config{}, xpost.MissingEnvError{Provider: providerName, Variables: missing}
	}

	return cfg, nil
}
