package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ttm-go/tweetmd/vault"
)

// Images on the CDN are small; anything past this is not an image we want.
const maxAssetBytes = 32 << 20

// DefaultHTTPClient is a pooled, traced client for asset downloads. Assets
// are not retried: a failed image is reported, and the next save picks it up.
func DefaultHTTPClient() *http.Client {
	c := cleanhttp.DefaultPooledClient()
	c.Transport = otelhttp.NewTransport(c.Transport)
	return c
}

// Fetch returns a task that GETs url and stores the body at dest in v. A
// destination that appeared since the task was registered is left alone.
func Fetch(client *http.Client, v vault.Vault, url, dest string) Task {
	return Task{
		Dest: dest,
		Run: func(ctx context.Context) (int64, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return 0, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return 0, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return 0, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
			}
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
			if err != nil {
				return 0, fmt.Errorf("fetching %s: %w", url, err)
			}
			if len(data) > maxAssetBytes {
				return 0, fmt.Errorf("fetching %s: asset larger than %d bytes", url, maxAssetBytes)
			}
			if err := v.CreateBinaryFile(ctx, dest, data); err != nil {
				if errors.Is(err, vault.ErrExists) {
					return 0, nil
				}
				return 0, err
			}
			return int64(len(data)), nil
		},
	}
}
