package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: Xingming\nDisallow: /private/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Xingming/0.1 (+https://github.com/ppiankov/xingming)", 5*time.Second, nil)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/charts/a.txt")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/b.txt")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, int32(1), hits.Load(), "robots.txt should be fetched once per host")

	checker.Clear()
	assert.True(t, checker.IsAllowed(ctx, server.URL+"/"))
	assert.Equal(t, int32(2), hits.Load())
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("Xingming/0.1", 5*time.Second, nil)
	assert.True(t, checker.IsAllowed(context.Background(), server.URL+"/anything"))
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("Xingming/0.1", time.Second, nil)
	_, _, err := checker.CanFetch(context.Background(), "::invalid")
	assert.Error(t, err)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "Xingming", NormalizeUserAgent("Xingming/0.1 (+https://github.com/ppiankov/xingming)"))
	assert.Equal(t, "bot", NormalizeUserAgent("bot"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), rawURL string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3129", "localhost, .internal.example, 10.0.0.1:8080")

	assert.Equal(t, "http://proxy:3128", proxyFor(t, fn, "http://example.com/chart.txt"))
	assert.Equal(t, "http://secure-proxy:3129", proxyFor(t, fn, "https://example.com/chart.txt"))
	assert.Equal(t, "", proxyFor(t, fn, "http://localhost:8080/chart.txt"))
	assert.Equal(t, "", proxyFor(t, fn, "https://charts.internal.example/a"))
	assert.Equal(t, "", proxyFor(t, fn, "http://internal.example/a"))
	assert.Equal(t, "", proxyFor(t, fn, "http://10.0.0.1/a"))
	assert.Equal(t, "http://proxy:3128", proxyFor(t, fn, "http://notinternal.example/a"))
}

func TestNewProxyFunc_HTTPOnly(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "")
	assert.Equal(t, "http://proxy:3128", proxyFor(t, fn, "https://example.com/"))
}

func TestNewProxyFunc_BypassAll(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "*")
	assert.Equal(t, "", proxyFor(t, fn, "http://example.com/"))
}
