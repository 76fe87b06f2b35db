package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/sony/gobreaker"

	"github.com/umputun/wouldreads/pkg/domain"
)

const maxPayloadSize = 16 * 1024 * 1024

// ErrNoContents is returned when the relay response has no contents field
var ErrNoContents = errors.New("no contents in relay response")

// FetcherParams defines parameters of the HTTPFetcher
type FetcherParams struct {
	Timeout     time.Duration // http client timeout, zero means no client-level timeout
	RelayURL    string        // optional relay prefix, feed url is query-escaped and appended
	UserAgent   string
	MaxFailures uint32        // consecutive failures opening a source breaker, zero disables breakers
	OpenTimeout time.Duration // how long an open breaker rejects requests
	HTTPClient  *http.Client  // optional, made from Timeout if nil
}

// HTTPFetcher retrieves raw feed payloads over HTTP, directly or through a relay
type HTTPFetcher struct {
	client    *http.Client
	relayURL  string
	userAgent string

	maxFailures uint32
	openTimeout time.Duration
	breakersMu  sync.Mutex
	breakers    map[string]*gobreaker.CircuitBreaker
}

// NewHTTPFetcher creates a new feed fetcher
func NewHTTPFetcher(params FetcherParams) *HTTPFetcher {
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: params.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if params.UserAgent == "" {
		params.UserAgent = "wouldreads/1.0"
	}
	if params.OpenTimeout == 0 {
		params.OpenTimeout = time.Minute
	}

	return &HTTPFetcher{
		client:      client,
		relayURL:    params.RelayURL,
		userAgent:   params.UserAgent,
		maxFailures: params.MaxFailures,
		openTimeout: params.OpenTimeout,
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Fetch retrieves the raw payload of the source feed
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	cb := f.breaker(src.Name)
	if cb == nil {
		return f.fetch(ctx, src)
	}

	res, err := cb.Execute(func() (interface{}, error) {
		return f.fetch(ctx, src)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("source %s temporarily disabled: %w", src.Name, err)
		}
		return nil, err
	}
	return res.([]byte), nil
}

// fetch makes the request and unwraps the relay envelope if relay is used
func (f *HTTPFetcher) fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	reqURL := src.FeedURL
	if f.relayURL != "" {
		reqURL = f.relayURL + url.QueryEscape(src.FeedURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	addBrowserHeaders(req, f.relayURL != "")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.FeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if f.relayURL == "" {
		return body, nil
	}
	return unwrapRelay(body)
}

// unwrapRelay extracts the original payload from a relay JSON envelope
func unwrapRelay(body []byte) ([]byte, error) {
	var envelope struct {
		Contents *string `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}
	if envelope.Contents == nil || *envelope.Contents == "" {
		return nil, ErrNoContents
	}
	return []byte(*envelope.Contents), nil
}

// breaker returns the circuit breaker of the source, nil if breakers are disabled
func (f *HTTPFetcher) breaker(name string) *gobreaker.CircuitBreaker {
	if f.maxFailures == 0 {
		return nil
	}

	f.breakersMu.Lock()
	defer f.breakersMu.Unlock()
	if cb, ok := f.breakers[name]; ok {
		return cb
	}

	maxFailures := f.maxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     f.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lgr.Printf("[INFO] source %s breaker %s -> %s", name, from, to)
		},
	})
	f.breakers[name] = cb
	return cb
}
