package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"customer-analytics/parser"
	"customer-analytics/utils"
)

// HTTP fetches the table text from a URL, retrying transient failures
// with exponential backoff.
type HTTP struct {
	url    string
	client *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// NewHTTP creates an HTTP source for the given URL.
func NewHTTP(url string, opts Options) *HTTP {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	base := opts.RetryBase
	if base <= 0 {
		base = time.Second
	}
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   base,
			Logger:      opts.Logger,
		},
		logger: opts.Logger,
	}
}

// Fetch downloads and decodes the table text.
func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	var text string
	err := h.retry.Do("fetch "+h.url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return fmt.Errorf("source: build request: %w", err)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("source: get %s: %w", h.url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("source: get %s: unexpected status %s", h.url, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("source: read body: %w", err)
		}
		text, err = parser.Decode(data)
		if err != nil {
			return err
		}
		h.logger.Debug("[source] fetched %d bytes from %s", len(data), h.url)
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
