package mastodon

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blacktop/xsync/internal/xpost"
	mastodonapi "github.com/mattn/go-mastodon"
)

const (
	envServer       = "XSYNC_MASTODON_SERVER"
	envAccessToken  = "XSYNC_MASTODON_ACCESS_TOKEN"
	envClientID     = "XSYNC_MASTODON_CLIENT_ID"
	envClientSecret = "XSYNC_MASTODON_CLIENT_SECRET"

	providerName   = "mastodon"
	requestTimeout = 30 * time.Second

	timelineLimit = 30
)

// Config contains the settings needed to reach a Mastodon server.
type Config struct {
	Server       string `yaml:"server"`
	AccessToken  string `yaml:"access_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Client wraps the Mastodon API client with sync semantics.
type Client struct {
	client *mastodonapi.Client
}

// New constructs a Mastodon client. Environment variables take precedence
// over base.
func New(base Config) (*Client, error) {
	cfg, err := loadConfig(base)
	if err != nil {
		return nil, err
	}

	mastodonClient := mastodonapi.NewClient(&mastodonapi.Config{
		Server:       cfg.Server,
		AccessToken:  cfg.AccessToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	mastodonClient.Timeout = requestTimeout

	return &Client{client: mastodonClient}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// Statuses returns the newest statuses of the authenticated account, newest
// first.
func (c *Client) Statuses(ctx context.Context) ([]*mastodonapi.Status, error) {
	account, err := c.client.GetAccountCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	statuses, err := c.client.GetAccountStatuses(ctx, account.ID, &mastodonapi.Pagination{Limit: timelineLimit})
	if err != nil {
		return nil, fmt.Errorf("get account statuses: %w", err)
	}
	return statuses, nil
}

// Post publishes a new toot with its attachments.
func (c *Client) Post(ctx context.Context, status xpost.NewStatus) error {
	var mediaIDs []mastodonapi.ID
	for _, media := range status.Attachments {
		attachment, err := c.uploadMedia(ctx, media)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, attachment.ID)
	}

	_, err := c.client.PostStatus(ctx, &mastodonapi.Toot{
		Status:   status.Text,
		MediaIDs: mediaIDs,
	})
	if err != nil {
		return fmt.Errorf("post status: %w", err)
	}

	return nil
}

func (c *Client) uploadMedia(ctx context.Context, media xpost.NewMedia) (*mastodonapi.Attachment, error) {
	data, err := xpost.DownloadMedia(ctx, media.URL)
	if err != nil {
		return nil, err
	}

	attachment, err := c.client.UploadMediaFromMedia(ctx, &mastodonapi.Media{
		File:        bytes.NewReader(data),
		Description: media.AltText,
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	return attachment, nil
}

func loadConfig(base Config) (Config, error) {
	cfg := Config{
		Server:       strings.TrimSpace(os.Getenv(envServer)),
		AccessToken:  strings.TrimSpace(os.Getenv(envAccessToken)),
		ClientID:     strings.TrimSpace(os.Getenv(envClientID)),
		ClientSecret: strings.TrimSpace(os.Getenv(envClientSecret)),
	}

	if cfg.Server == "" {
		cfg.Server = strings.TrimSpace(base.Server)
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = strings.TrimSpace(base.AccessToken)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = strings.TrimSpace(base.ClientID)
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = strings.TrimSpace(base.ClientSecret)
	}

	var missing []string
	if cfg.Server == "" {
		missing = append(missing, envServer)
	}
	if cfg.AccessToken == "" {
		missing = append(missing, envAccessToken)
	}

	if len(missing) > 0 {
		return Config{}, xpost.MissingEnvError{Provider: providerName, Variables: missing}
	}

	return cfg, nil
}
