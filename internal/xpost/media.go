package xpost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blacktop/xsync/internal/logutil"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	mediaTimeout  = 60 * time.Second
	maxMediaBytes = 50 << 20
)

var mediaClient = newMediaClient()

func newMediaClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = mediaTimeout
	client.Logger = logutil.Leveled{}
	return client
}

// DownloadMedia fetches an attachment so it can be uploaded to the other
// network.
func DownloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := mediaClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxMediaBytes {
		return nil, ValidationError{Provider: "media", Reason: fmt.Sprintf("%s exceeds %d bytes", url, maxMediaBytes)}
	}
	return data, nil
}
