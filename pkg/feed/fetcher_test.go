package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wouldreads/pkg/domain"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>Test Article 1</title><link>https://example.com/article1</link></item>
</channel></rss>`

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(testRSS))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(FetcherParams{Timeout: 5 * time.Second, UserAgent: "test-agent"})
		body, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, testRSS, string(body))
	})

	t.Run("through relay", func(t *testing.T) {
		var gotURL string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotURL = r.URL.Query().Get("url")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"contents": testRSS, "status": map[string]int{"http_code": 200}})
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(FetcherParams{Timeout: 5 * time.Second, RelayURL: server.URL + "/get?url="})
		body, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: "https://example.com/feed?a=1&b=2"})
		require.NoError(t, err)
		assert.Equal(t, testRSS, string(body))
		assert.Equal(t, "https://example.com/feed?a=1&b=2", gotURL)
	})

	t.Run("relay without contents", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": {"http_code": 404}}`))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(FetcherParams{RelayURL: server.URL + "/get?url="})
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: "https://example.com/feed"})
		require.ErrorIs(t, err, ErrNoContents)
	})

	t.Run("relay with bad json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(FetcherParams{RelayURL: server.URL + "/get?url="})
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: "https://example.com/feed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode relay response")
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(FetcherParams{})
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: server.URL})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code: 500")
	})

	t.Run("context deadline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		fetcher := NewHTTPFetcher(FetcherParams{})
		_, err := fetcher.Fetch(ctx, domain.Source{Name: "s1", FeedURL: server.URL})
		require.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		fetcher := NewHTTPFetcher(FetcherParams{})
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "s1", FeedURL: "not-a-url"})
		require.Error(t, err)
	})
}

func TestHTTPFetcher_Breaker(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/good" {
			_, _ = w.Write([]byte(testRSS))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(FetcherParams{MaxFailures: 2, OpenTimeout: time.Hour})
	bad := domain.Source{Name: "bad", FeedURL: server.URL + "/bad"}
	good := domain.Source{Name: "good", FeedURL: server.URL + "/good"}

	for i := 0; i < 2; i++ {
		_, err := fetcher.Fetch(context.Background(), bad)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	// breaker of the bad source is open now, no request is made
	_, err := fetcher.Fetch(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporarily disabled")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	// other sources are not affected
	body, err := fetcher.Fetch(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, testRSS, string(body))
}
