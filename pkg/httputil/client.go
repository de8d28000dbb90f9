package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lzdw/lzdraw/pkg/observability"
)

// DefaultTimeout bounds a single request. Completion calls are slow.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 2048

// ErrNetwork marks transport failures: connection errors and timeouts.
var ErrNetwork = errors.New("network error")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client posts JSON to an API and decodes JSON responses.
// Default headers are applied to every request.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client. A nil hc gets a client with [DefaultTimeout].
func NewClient(hc *http.Client, headers map[string]string) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: hc, headers: headers}
}

// PostJSON marshals payload, posts it to rawURL and decodes the response
// into v. Transport failures, 429 and 5xx come back as [RetryableError].
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return RetryableAfter(err, retryAfter(resp.Header.Get("Retry-After")))
	}
	return err
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}
