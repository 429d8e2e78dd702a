package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// Prober issues GET requests against the hospital backend.
type Prober struct {
	baseURL string
	client  *http.Client
}

// New returns a Prober for baseURL. Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration) *Prober {
	return &Prober{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the base URL without a trailing slash
func (p *Prober) BaseURL() string {
	return p.baseURL
}

// URL joins path onto the base URL.
func (p *Prober) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

// Get requests path and returns the response status. The body is drained and
// closed so the connection can be reused.
func (p *Prober) Get(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(path), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// IsConnRefused reports whether err means nothing was listening at the
// target: a refused connection, a failed dial or an unresolvable host.
func IsConnRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && strings.Contains(urlErr.Err.Error(), "connection refused") {
		return true
	}
	return false
}

// WaitReady polls path until it answers with a status below 300, the retries
// are used up or ctx is done. tick, when non-nil, is called after every
// unsuccessful attempt.
func (p *Prober) WaitReady(ctx context.Context, path string, retries int, interval time.Duration, tick func(attempt int, status int, err error)) error {
	for i := 0; i < retries; i++ {
		status, err := p.Get(ctx, path)
		if err == nil && status < 300 {
			return nil
		}
		if tick != nil {
			tick(i+1, status, err)
		}
		if i == retries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("%s is not ready after %d attempts", p.URL(path), retries)
}
