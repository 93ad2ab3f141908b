package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

// newTestFetcher returns a fetcher with fast retries and no throttling.
func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := New(Config{
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	})
	return f, srv
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.com/opinion"))
	assert.True(t, IsURL("https://example.com/opinion.pdf"))
	assert.False(t, IsURL("/var/briefs/opinion.pdf"))
	assert.False(t, IsURL("file:///var/briefs/opinion.pdf"))
	assert.False(t, IsURL("ftp://example.com/opinion"))
}

func TestFetcher_Fetch(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("User-Agent"), "counsel")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><title>Smith v. Jones</title><body>opinion text</body></html>")
	}))

	raw, err := f.Fetch(context.Background(), srv.URL+"/opinions/42")

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/opinions/42", raw.URI)
	assert.Equal(t, "text/html", raw.MIMEType, "charset parameter is stripped")
	assert.Contains(t, string(raw.Content), "Smith v. Jones")
	assert.Equal(t, domain.SourceURL, raw.SourceKind)
	assert.Empty(t, raw.Title, "title derivation belongs to extractors")
}

func TestFetcher_Fetch_PDFContentType(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))

	raw, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", raw.MIMEType)
}

func TestFetcher_Fetch_MissingContentTypeDefaultsToHTML(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress Go's sniffing header
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("bare bytes"))
	}))

	raw, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "text/html", raw.MIMEType)
}

func TestFetcher_Fetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/current", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/current", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "final")
	})

	f, srv := newTestFetcher(t, mux)

	raw, err := f.Fetch(context.Background(), srv.URL+"/old")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(raw.URI, "/current"), "URI should reflect the final URL, got %s", raw.URI)
	assert.Equal(t, []byte("final"), raw.Content)
}

func TestFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "recovered")
	}))

	raw, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), raw.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_Fetch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(DefaultMaxRetries+1), calls.Load())
}

func TestFetcher_Fetch_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))

	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcher_Fetch_RejectsNonHTTPSchemes(t *testing.T) {
	f := New(Config{})

	for _, bad := range []string{"ftp://example.com/brief", "file:///etc/passwd", "/local/path"} {
		_, err := f.Fetch(context.Background(), bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestFetcher_Fetch_BodySizeCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write(make([]byte, 2048))
	}))
	t.Cleanup(srv.Close)

	f := New(Config{
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
		MaxBodyBytes:      1024,
	})

	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFetcher_Fetch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	// Long retry delay so cancellation lands inside the backoff wait.
	f := New(Config{
		RetryDelay:        10 * time.Second,
		RequestsPerSecond: 1000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
