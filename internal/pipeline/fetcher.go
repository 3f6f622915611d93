package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/xingming/internal/cache"
	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/util"
	"github.com/ppiankov/xingming/internal/worker"
)

const fetchAttempts = 3

// fetchSleepFunc is replaced in tests to skip backoff delays
var fetchSleepFunc = time.Sleep

var (
	// ErrDisallowedByRobots is returned when robots.txt forbids the fetch
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
	// ErrBodyTooLarge is returned when a chart export exceeds the size limit
	ErrBodyTooLarge = errors.New("response body too large")
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher downloads chart exports given by URL
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	limiter    *worker.Limiter     // nil when unlimited
	cache      cache.Cache         // nil when caching is off
	cacheTTL   time.Duration
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpProxy, httpsProxy, noProxy)

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
	if respectRobots {
		f.robots = util.NewRobotsChecker(userAgent, timeout, transport)
	}
	return f
}

// NewFetcherFromConfig creates a fetcher from the HTTP config
func NewFetcherFromConfig(cfg model.HTTPConfig) *Fetcher {
	return NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes, cfg.RespectRobots, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
}

// WithLimiter throttles requests per host
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// WithCache memoizes fetched pages for ttl
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	f.cache = c
	f.cacheTTL = ttl
	return f
}

// FetchResult contains the fetched content and metadata
type FetchResult struct {
	Content  string          `json:"content"`
	Meta     model.FetchMeta `json:"meta"`
	FinalURL string          `json:"final_url"`
}

// Fetch retrieves a chart export from the given URL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("create request: unsupported scheme %q", parsed.Scheme)
	}

	key := cache.CacheKey(rawURL)
	var cached FetchResult
	if cache.GetJSON(f.cache, key, &cached) {
		cached.Meta.Cached = true
		logger.Log.WithField("url", rawURL).Debug("chart page served from cache")
		return &cached, nil
	}

	var delay time.Duration
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, rawURL)
		}
		delay = crawlDelay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, parsed.Host, delay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, f.maxBytes)
	}

	finalURL := resp.Request.URL.String()
	result := &FetchResult{
		Content: string(body),
		Meta: model.FetchMeta{
			StatusCode:   resp.StatusCode,
			ContentType:  resp.Header.Get("Content-Type"),
			LastModified: resp.Header.Get("Last-Modified"),
			FinalURL:     finalURL,
		},
		FinalURL: finalURL,
	}

	if err := cache.SetJSON(f.cache, key, result, f.cacheTTL); err != nil {
		logger.Log.WithError(err).Warn("could not cache chart page")
	}

	return result, nil
}

// FetchWithRetry retries Fetch on transient failures with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || attempt == fetchAttempts {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := time.Duration(attempt) * 500 * time.Millisecond
		logger.Log.WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt,
			"backoff": backoff,
		}).WithError(err).Warn("fetch failed, retrying")
		fetchSleepFunc(backoff)
	}
	return nil, lastErr
}

// isRetryableFetchError reports whether err is worth another attempt:
// 5xx, 429 and dropped connections
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "unexpected status: ") {
		code := strings.Fields(strings.TrimPrefix(msg, "unexpected status: "))
		if len(code) > 0 {
			return code[0] == "429" || strings.HasPrefix(code[0], "5")
		}
	}
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}
