package opener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultRetries = 3
	maxBody        = 16 << 20
)

// HTTP opens documents over http and https, retrying transient failures.
type HTTP struct {
	client *retryablehttp.Client
}

// NewHTTP returns an HTTP opener. A nil logger silences retry logging.
func NewHTTP(logger *slog.Logger, retries int) *HTTP {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.Logger = nil
	if logger != nil {
		c.Logger = logger
	}
	return &HTTP{client: c}
}

func (h *HTTP) Open(ctx context.Context, url string) (*Resource, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: %s", url, resp.Status)
	}
	d, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return &Resource{Name: url, Data: d}, nil
}
