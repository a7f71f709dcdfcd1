// Package robots memoises robots.txt decisions per host.
package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/allthingstrust/truststack/pkg/ratelimit"
)

// FetchTimeout bounds the robots.txt HTTP fetch.
const FetchTimeout = 5 * time.Second

// Cache memoises parsed robots.txt policies keyed by scheme://host. Fails
// open: any fetch/parse error memoises a permissive empty policy.
type Cache struct {
	mu       sync.RWMutex
	policies map[string]*robotstxt.RobotsData
	limiter  *ratelimit.Limiter
	client   *http.Client
}

// New creates a robots cache that routes its own robots.txt fetches through
// limiter so it never bypasses per-host rate limiting.
func New(limiter *ratelimit.Limiter) *Cache {
	return &Cache{
		policies: make(map[string]*robotstxt.RobotsData),
		limiter:  limiter,
		client:   &http.Client{Timeout: FetchTimeout},
	}
}

// IsAllowed reports whether userAgent may fetch rawURL per the host's
// robots.txt. On any internal error, returns true (fail open).
func (c *Cache) IsAllowed(ctx context.Context, rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	key := u.Scheme + "://" + u.Host

	c.mu.RLock()
	policy, ok := c.policies[key]
	c.mu.RUnlock()
	if ok {
		return policy.TestAgent(u.Path, userAgent)
	}

	policy = c.fetchAndMemoise(ctx, key, userAgent)
	return policy.TestAgent(u.Path, userAgent)
}

// fetchAndMemoise fetches and parses robots.txt for key ("scheme://host"),
// storing (and returning) the resulting policy. Failures memoise a
// permissive empty policy so subsequent lookups don't re-fetch.
func (c *Cache) fetchAndMemoise(ctx context.Context, key, userAgent string) *robotstxt.RobotsData {
	permissive := allowAllPolicy()

	c.limiter.WaitFor(key + "/robots.txt")

	fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		slog.Warn("robots: failed to build request, failing open", "key", key, "error", err)
		return c.store(key, permissive)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("robots: fetch failed, failing open", "key", key, "error", err)
		return c.store(key, permissive)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.store(key, permissive)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.store(key, permissive)
	}

	parsed, err := robotstxt.FromBytes(body)
	if err != nil {
		slog.Debug("robots: parse failed, failing open", "key", key, "error", err)
		return c.store(key, permissive)
	}

	return c.store(key, parsed)
}

func (c *Cache) store(key string, policy *robotstxt.RobotsData) *robotstxt.RobotsData {
	c.mu.Lock()
	c.policies[key] = policy
	c.mu.Unlock()
	return policy
}

// allowAllPolicy builds a permissive robots.txt policy (empty ruleset).
func allowAllPolicy() *robotstxt.RobotsData {
	policy, err := robotstxt.FromBytes([]byte{})
	if err != nil {
		// robotstxt.FromBytes never errs on empty input; guard anyway.
		policy, _ = robotstxt.FromString("")
	}
	return policy
}
