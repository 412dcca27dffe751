package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeSim/pkg/config"
	xhttp "TradeSim/pkg/http"
)

// HTTPServiceBase is the shared foundation of the analytics backend clients.
// It centralizes client construction, auth headers and retrying GETs.
type HTTPServiceBase struct {
	baseURL  string
	token    string
	attempts int
	client   *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout, token and base URL from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
	timeout := cfg.Analytics.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPServiceBase{
		baseURL:  cfg.Analytics.BaseURL,
		token:    cfg.Analytics.Token,
		attempts: cfg.Analytics.Retries + 1,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("tradesim-analytics")),
	}
}

func (b *HTTPServiceBase) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if b.token != "" {
		h["Authorization"] = "Bearer " + b.token
	}
	return h
}

// GetJSON issues a GET to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("analytics http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		Headers:     b.headers(),
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// GetJSONWithRetry retries transient failures with a linear backoff.
// Client errors (4xx other than 429) are returned immediately.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.attempts <= 1 {
		return b.GetJSON(ctx, path, query, dest)
	}
	var err error
	for i := 1; i <= b.attempts; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil || !retryable(err) {
			return err
		}
		if i == b.attempts {
			break
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
