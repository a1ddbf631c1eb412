package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultBackoffUnit    = time.Second
	DefaultMaxAttempts    = 3
)

// client performs GET requests with a per-attempt timeout and linear
// backoff (unit × attempt) between attempts.
type client struct {
	http           *http.Client
	header         http.Header
	requestTimeout time.Duration
	backoffUnit    time.Duration
	maxAttempts    int
}

func newClient(hc *http.Client, header http.Header, requestTimeout, backoffUnit time.Duration, maxAttempts int) client {
	if hc == nil {
		hc = &http.Client{}
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if backoffUnit <= 0 {
		backoffUnit = DefaultBackoffUnit
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return client{
		http:           hc,
		header:         header,
		requestTimeout: requestTimeout,
		backoffUnit:    backoffUnit,
		maxAttempts:    maxAttempts,
	}
}

// getWithRetry returns the body of the first successful response. Only
// 429, 503 and timeouts are retried.
func (c client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts || ctx.Err() != nil {
			return nil, lastErr
		}

		timer := time.NewTimer(c.backoffUnit * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (c client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code == http.StatusTooManyRequests || he.Code == http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
