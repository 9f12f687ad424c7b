package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestError is returned once the retry budget for a request is exhausted.
// It carries the request URL and the last underlying error.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed after retries: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client is an HTTP client that retries every request a fixed number of
// times with a fixed delay between attempts. Any transport error or 4xx/5xx
// status counts as a failed attempt. There is deliberately no backoff or
// jitter; the remote services rate-limit by rejecting, not by throttling
// windows, and the fetch stage bounds total wait as attempts * delay.
type Client struct {
	httpClient *http.Client
	attempts   int
	delay      time.Duration
}

// New creates a retrying client from the configuration.
func New(cfg Config) *Client {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	delaySeconds := cfg.DelaySeconds
	if delaySeconds < 0 {
		delaySeconds = 5
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		attempts:   attempts,
		delay:      time.Duration(delaySeconds) * time.Second,
	}
}

// Get performs a GET request with retries and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, rawURL, headers, "", nil)
}

// PostForm performs a form-encoded POST request with retries and returns the
// response body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) ([]byte, error) {
	return c.execute(ctx, http.MethodPost, rawURL, headers, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// PostJSON performs a JSON POST request with retries and returns the
// response body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body []byte, headers map[string]string) ([]byte, error) {
	return c.execute(ctx, http.MethodPost, rawURL, headers, "application/json", body)
}

func (c *Client) execute(ctx context.Context, method, rawURL string, headers map[string]string, contentType string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			// Fixed inter-attempt delay, cancellable through the context.
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return nil, &RequestError{URL: rawURL, Err: ctx.Err()}
			}
		}

		data, err := c.doOnce(ctx, method, rawURL, headers, contentType, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, &RequestError{URL: rawURL, Err: lastErr}
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, headers map[string]string, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return data, nil
}
