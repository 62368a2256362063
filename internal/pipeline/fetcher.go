package pipeline

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/ppiankov/larder/internal/cache"
	"github.com/ppiankov/larder/internal/logging"
	"github.com/ppiankov/larder/internal/metrics"
	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/util"
	"github.com/ppiankov/larder/internal/worker"
)

// ErrDisallowed means robots.txt forbids fetching the page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// chardet results below this confidence are ignored
const minCharsetConfidence = 50

// Fetcher downloads recipe pages
type Fetcher struct {
	client    *retryablehttp.Client
	userAgent string
	maxBytes  int64

	robots  *util.RobotsChecker
	limiter *worker.Limiter
	pages   *cache.PageCache
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// FetcherOption configures optional fetcher collaborators
type FetcherOption func(*Fetcher)

// WithRobots enables robots.txt checks
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithLimiter enables per-site pacing
func WithLimiter(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// WithPageCache serves repeat fetches from c
func WithPageCache(c *cache.PageCache) FetcherOption {
	return func(f *Fetcher) { f.pages = c }
}

// WithFetchMetrics records fetch outcomes
func WithFetchMetrics(m *metrics.Recorder) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// WithFetchLogger sets the logger used for retries and cache decisions
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logging.OrNop(l) }
}

// WithRetryWait overrides the retry backoff bounds
func WithRetryWait(minWait, maxWait time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.RetryWaitMin = minWait
		f.client.RetryWaitMax = maxWait
	}
}

// NewFetcher creates a fetcher from HTTP settings
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) *Fetcher {
	transport := &http.Transport{
		Proxy:               util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, ""),
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}

	f := &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	client.Logger = leveledLogger{f.logger.Sugar()}
	return f
}

// FetchResult contains the decoded page and its metadata
type FetchResult struct {
	HTML      string
	Meta      model.FetchMeta
	FinalURL  string
	FetchedAt time.Time
}

// Fetch retrieves a page, honoring the cache, robots.txt and pacing
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.pages != nil {
		if p, ok := f.pages.Get(rawURL); ok {
			f.logger.Debug("page cache hit", zap.String("url", rawURL))
			f.metrics.ObserveFetch(0, true, nil)
			meta := p.Meta
			meta.FromCache = true
			return &FetchResult{HTML: p.HTML, Meta: meta, FinalURL: p.FinalURL, FetchedAt: p.FetchedAt}, nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrDisallowed
		}
		if f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	result, err := f.get(ctx, rawURL)
	f.metrics.ObserveFetch(time.Since(start), false, err)
	if err != nil {
		return nil, err
	}

	if f.pages != nil {
		err := f.pages.Put(&cache.Page{
			URL:       rawURL,
			FinalURL:  result.FinalURL,
			HTML:      result.HTML,
			Meta:      result.Meta,
			FetchedAt: result.FetchedAt,
		})
		if err != nil {
			f.logger.Warn("page cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}
	return result, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}
	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	html, label := decodeBody(body, meta.ContentType)
	meta.Charset = label

	return &FetchResult{
		HTML:      html,
		Meta:      meta,
		FinalURL:  resp.Request.URL.String(),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// decodeBody converts a page to UTF-8. Declared encodings (BOM, header,
// <meta>) and valid UTF-8 are trusted; only the windows-1252 default is
// replaced by a confident chardet guess.
func decodeBody(body []byte, contentType string) (string, string) {
	_, label, certain := charset.DetermineEncoding(body, contentType)
	if !certain && label == "windows-1252" {
		if res, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && res.Confidence >= minCharsetConfidence {
			label = strings.ToLower(res.Charset)
		}
	}
	if label == "utf-8" {
		return string(body), label
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return string(body), "utf-8"
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body), "utf-8"
	}
	return string(decoded), label
}

// leveledLogger adapts zap to retryablehttp's LeveledLogger
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
