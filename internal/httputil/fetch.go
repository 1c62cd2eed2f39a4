// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the bounded HTTP GET shared by every source
// adapter.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/literature-engine/internal/errors"
)

// DefaultTimeout bounds a single upstream call when the Fetcher has none set.
const DefaultTimeout = 6 * time.Second

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 16 << 20

// Fetcher performs one bounded GET per call. A call either returns the
// response body or a typed error from internal/errors; it never retries.
//
// A Fetcher is safe for concurrent use. The Limiter, when set, is shared by
// every call made through the Fetcher and only spaces requests out.
type Fetcher struct {
	// Source names the provider in error messages.
	Source string

	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Limiter   *rate.Limiter
}

// Get fetches rawURL with the given extra headers and returns the body.
//
// Errors:
//   - deadline exceeded (including while waiting on the limiter): UPSTREAM_TIMEOUT
//   - transport failure: UPSTREAM_UNAVAILABLE
//   - non-2xx status: BAD_UPSTREAM_RESPONSE "HTTP <code>"
//   - an HTML page instead of data: BAD_UPSTREAM_RESPONSE
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if f.Limiter != nil {
		// Wait fails early when the reservation would outlast the deadline.
		if err := f.Limiter.Wait(ctx); err != nil {
			if ctx.Err() == context.Canceled {
				return nil, errors.UpstreamUnavailable(f.Source, err)
			}
			return nil, errors.UpstreamTimeout(f.Source, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("%s: building request", f.Source), err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, f.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.BadUpstreamResponse(f.Source, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, f.transportError(ctx, err)
	}

	if isHTML(resp.Header.Get("Content-Type"), body) {
		return nil, errors.BadUpstreamResponse(f.Source, "unexpected HTML response", nil)
	}
	return body, nil
}

// transportError classifies a failure that happened before a complete
// response was read.
func (f *Fetcher) transportError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return errors.UpstreamTimeout(f.Source, err)
	}
	return errors.UpstreamUnavailable(f.Source, err)
}

// isHTML reports whether a response is an HTML page. Providers serve error
// and maintenance pages with a 200 status, so the body is sniffed as well
// as the declared content type.
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
