package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sync"

	"github.com/lcastiglione/go-schedule/internal/config"
)

// ErrNotCalendar is returned when a feed URL answers with an HTML page,
// typically a login or captive portal.
var ErrNotCalendar = errors.New(config.ErrNotCalendar)

// Fetcher defines the contract for retrieving remote iCalendar holiday feeds.
type Fetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements Fetcher using net/http. Feeds served with an ETag are
// kept in memory and revalidated with If-None-Match on the next fetch.
type HTTPFetcher struct {
	Client *http.Client

	mu    sync.Mutex
	cache map[string]cachedFeed
}

type cachedFeed struct {
	etag string
	body []byte
}

// NewHTTPFetcher creates an HTTPFetcher with the configured timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		cache: make(map[string]cachedFeed),
	}
}

// Fetch downloads a feed. Query parameters are stripped from logged URLs since
// they often carry tokens. The body is capped at config.MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.AcceptCalendar)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	cached, hasCache := f.cached(targetURL)
	if hasCache {
		req.Header.Set(config.HeaderIfNoneMatch, cached.etag)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified && hasCache:
		_ = resp.Body.Close()
		log.Debug(config.MsgFeedCached, slog.String(config.LogKeyETag, cached.etag))
		return io.NopCloser(bytes.NewReader(cached.body)), nil

	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		log.Warn("Server returned error status", slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	if mt, _, err := mime.ParseMediaType(resp.Header.Get(config.HeaderContentType)); err == nil && mt == config.MimeHTML {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotCalendar, mt)
	}

	log.Info("Holiday feed downloading", slog.Int64(config.LogKeySizeBytes, resp.ContentLength))

	body := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	etag := resp.Header.Get(config.HeaderETag)
	if etag == "" {
		return &limitedReadCloser{Reader: body, Closer: resp.Body}, nil
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}
	f.store(targetURL, cachedFeed{etag: etag, body: data})
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *HTTPFetcher) cached(key string) (cachedFeed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cache[key]
	return c, ok
}

func (f *HTTPFetcher) store(key string, c cachedFeed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cache == nil {
		f.cache = make(map[string]cachedFeed)
	}
	f.cache[key] = c
}

// limitedReadCloser pairs a size-limited reader with the response body closer.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
