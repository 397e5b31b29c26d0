// Package probe provides a minimal HTTP client for checking remote URL health.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the ceiling for a single probe, connect to headers.
const DefaultTimeout = 10 * time.Second

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// ErrInvalidURL is returned for URLs that cannot be probed.
var ErrInvalidURL = errors.New("invalid url")

// Client issues single GET requests and reports status and latency.
type Client struct {
	HTTP    *http.Client
	Timeout time.Duration
}

// New returns a new client. If httpClient is nil, a default with DefaultTimeout is used.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	timeout := httpClient.Timeout
	if timeout <= 0 || timeout > DefaultTimeout {
		timeout = DefaultTimeout
	}
	return &Client{HTTP: httpClient, Timeout: timeout}
}

// Result is the outcome of a completed probe.
type Result struct {
	URL        string
	StatusCode int
	Elapsed    time.Duration
}

// Healthy reports whether the status code is in the 2xx range.
func (r Result) Healthy() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Check performs a GET against rawURL. Elapsed covers the time until response
// headers arrived. The request is bounded by c.Timeout even if ctx has no deadline.
func (c *Client) Check(ctx context.Context, rawURL string) (Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Result{}, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return Result{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return Result{URL: rawURL, StatusCode: resp.StatusCode, Elapsed: elapsed}, nil
}

// IsTimeout reports whether err came from the probe deadline rather than
// another transport failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
