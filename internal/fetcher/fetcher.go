// Package fetcher implements the crawler's Fetcher capability: retrieving a
// URL's body over HTTP(S) with a fixed user agent, transparent redirects, and
// a caller-supplied wall-clock timeout.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// UserAgent is the fixed identifier the crawler announces on every request.
const UserAgent = "FalconGraphCrawler/1.0"

// Fetcher retrieves a URL's body for the crawler.
type Fetcher interface {
	// Fetch returns the response body, the raw (non-lowercased) Content-Type
	// header, and ok=true on success. On transport error, non-2xx final
	// status, or an empty body, it returns ok=false with an empty body; the
	// caller abandons the URL. No retries are attempted.
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (body []byte, contentType string, ok bool)
}

// Options controls HTTP fetching behaviour.
type Options struct {
	Headers      map[string]string
	MaxBodyBytes int64
	ProxyURL     string
}

// HTTPFetcher implements Fetcher using the standard library's http.Client.
type HTTPFetcher struct {
	client       *http.Client
	extraHeaders map[string]string
	maxBodyBytes int64
	logger       *slog.Logger
}

// New constructs an HTTPFetcher. The transport is shared across all calls;
// the wall-clock timeout is applied per call via Fetch's timeout parameter,
// not as a fixed client timeout, since the timeout is a call-time argument
// per the Fetcher contract.
func New(opts Options, logger *slog.Logger) (*HTTPFetcher, error) {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if strings.TrimSpace(opts.ProxyURL) != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &HTTPFetcher{
		client:       &http.Client{Transport: transport},
		extraHeaders: headers,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger,
	}, nil
}

// Fetch downloads rawURL, following redirects transparently, bounded by
// timeout. Transport errors and non-2xx final statuses are logged as a
// one-line diagnostic and reported as ok=false.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, string, bool) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Error("fetch: malformed request", "url", rawURL, "error", err)
		return nil, "", false
	}

	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.extraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		f.logger.Error("fetch: transport error", "url", rawURL, "error", err)
		return nil, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Error("fetch: non-2xx status", "url", rawURL, "status", resp.StatusCode)
		return nil, "", false
	}

	body, err := f.readBody(resp)
	if err != nil {
		f.logger.Error("fetch: read body failed", "url", rawURL, "error", err)
		return nil, "", false
	}
	if len(body) == 0 {
		f.logger.Error("fetch: empty body", "url", rawURL)
		return nil, "", false
	}

	return body, resp.Header.Get("Content-Type"), true
}

func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	var closers []io.Closer

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	limited := io.LimitReader(reader, f.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes)
	}
	return body, nil
}
