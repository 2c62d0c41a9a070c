// Package probe determines the size of a remote media file without
// downloading it.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoLength is returned when the server does not report a usable
// Content-Length for the resource.
var ErrNoLength = errors.New("no content length")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prober issues HEAD requests to measure remote files.
type Prober struct {
	client HTTPClient
}

// New creates a Prober with the given HTTP client.
func New(client HTTPClient) *Prober {
	return &Prober{client: client}
}

// SizeKB returns the remote file's size in kilobytes (bytes / 1000),
// the same unit the acceptance policy's size cap uses. A missing or
// negative Content-Length is an error, never treated as zero.
func (p *Prober) SizeKB(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("head: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return 0, ErrNoLength
	}

	return float64(resp.ContentLength) / 1000, nil
}
