// Package web fetches documents over HTTP for URL ingestion.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/veritas-labs/counsel/internal/adapters/driven/ratelimit"
	"github.com/veritas-labs/counsel/internal/backoff"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 2 * time.Second
	DefaultMaxBodyBytes      = 32 << 20 // 32 MiB
	DefaultRequestsPerSecond = 2.0

	userAgent = "counsel/1.0 (+https://github.com/veritas-labs/counsel)"
)

// Config holds configuration for the web fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries is the number of retries for transient failures (default: 3).
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff (default: 2s).
	RetryDelay time.Duration

	// MaxBodyBytes caps the response size (default: 32 MiB).
	MaxBodyBytes int64

	// RequestsPerSecond throttles outbound fetches (default: 2/s).
	RequestsPerSecond float64
}

// Fetcher downloads documents over HTTP with bounded retries. Server
// errors, rate limits, and network failures are retried with
// exponential backoff; client errors are not.
type Fetcher struct {
	client       *http.Client
	limiter      *ratelimit.Limiter
	maxRetries   int
	retryDelay   time.Duration
	maxBodyBytes int64
}

// New creates a web fetcher. Zero config fields fall back to defaults.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Fetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond}),
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// IsURL reports whether s looks like a fetchable HTTP(S) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads the resource at rawURL and returns it as a raw
// document. The MIME type comes from the Content-Type header and the
// URI reflects the final URL after redirects. Title is left empty so
// extractors can derive one from the content.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidInput, rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidInput, parsed.Scheme)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff.Delay(f.retryDelay, attempt)):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, retryable, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

// fetchOnce performs a single GET. The bool reports whether the
// failure is worth retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*domain.RawDocument, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		f.limiter.RecordRateLimitError(retryAfter)
		return nil, true, fmt.Errorf("rate limited (status 429)")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, false, fmt.Errorf("response exceeds %d bytes", f.maxBodyBytes)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &domain.RawDocument{
		URI:        finalURL,
		MIMEType:   mimeFromContentType(resp.Header.Get("Content-Type")),
		Content:    body,
		SourceKind: domain.SourceURL,
	}, false, nil
}

// mimeFromContentType extracts the media type from a Content-Type
// header. Absent or unparseable headers default to HTML, which is what
// ordinary web pages serve.
func mimeFromContentType(header string) string {
	if header == "" {
		return "text/html"
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "text/html"
	}
	return mt
}
