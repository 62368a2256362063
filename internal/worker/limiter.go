package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per recipe site. "www.example.com" and
// "example.com" share one bucket.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. A non-positive rate disables pacing.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a request to rawURL's site may proceed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	site, err := siteKey(rawURL)
	if err != nil {
		return err
	}
	return l.getLimiter(site).Wait(ctx)
}

// Allow reports whether a request may proceed now, consuming a token if so
func (l *Limiter) Allow(rawURL string) bool {
	site, err := siteKey(rawURL)
	if err != nil {
		return false
	}
	return l.getLimiter(site).Allow()
}

func (l *Limiter) getLimiter(site string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[site]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[site]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[site] = limiter
	return limiter
}

// ApplyCrawlDelay slows a site to one request per delay when that is
// stricter than the current pacing. Robots.txt Crawl-delay feeds this.
func (l *Limiter) ApplyCrawlDelay(rawURL string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	site, err := siteKey(rawURL)
	if err != nil {
		return
	}

	limit := rate.Every(delay)
	limiter := l.getLimiter(site)
	if limit < limiter.Limit() {
		limiter.SetLimit(limit)
		limiter.SetBurst(1)
	}
}

// siteKey returns the lowercase host without port or "www."
func siteKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
