package fetch

import (
	"context"
	"crypto/sha1" //nolint:gosec // used only for debug-dump filenames, not security
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/allthingstrust/truststack/pkg/browser"
	"github.com/allthingstrust/truststack/pkg/ratelimit"
	"github.com/allthingstrust/truststack/pkg/robots"
)

// BrowserController is the subset of *browser.Controller the fetcher needs.
type BrowserController interface {
	FetchPage(ctx context.Context, url, userAgent string, captureScreenshot bool, perRequestTimeout time.Duration) (*browser.Result, error)
}

// Config configures a Fetcher instance.
type Config struct {
	UserAgent           string
	DebugDir            string // AR_FETCH_DEBUG_DIR; "" disables dumps
	VisualAnalysisOn    bool   // try browser-first on site roots when enabled
	PreferBrowserGlobal bool   // global config forcing browser-first
	BrowserTimeout      time.Duration
	DomainConfigFor     func(host string) DomainConfig
}

// Fetcher is the unified HTTP+browser page fetcher.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *ratelimit.Limiter
	robots  *robots.Cache
	browser BrowserController

	mu                    sync.RWMutex
	domainRequiresBrowser map[string]bool
}

// New constructs a Fetcher. browserCtl may be nil to disable the browser
// path entirely (HTTP-only mode, e.g. after a browser launch failure).
func New(cfg Config, limiter *ratelimit.Limiter, robotsCache *robots.Cache, browserCtl BrowserController) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BrowserTimeout == 0 {
		cfg.BrowserTimeout = 25 * time.Second
	}
	if cfg.DomainConfigFor == nil {
		cfg.DomainConfigFor = func(string) DomainConfig { return DefaultDomainConfig() }
	}
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Transport: &http.Transport{MaxConnsPerHost: 4, MaxIdleConnsPerHost: 4}},
		limiter: limiter,
		robots:  robotsCache,
		browser: browserCtl,
		domainRequiresBrowser: make(map[string]bool),
	}
}

// Fetch retrieves a single URL, trying the browser first when the host
// is known to need it and falling back between HTTP and browser paths.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &Page{URL: rawURL}, fmt.Errorf("invalid URL: %w", err)
	}
	host := u.Host
	domainCfg := f.cfg.DomainConfigFor(host)

	if f.shouldTryBrowserFirst(u) {
		if page, ok := f.tryBrowserPath(ctx, rawURL, f.cfg.VisualAnalysisOn); ok {
			return page, nil
		}
	}

	page, status, err := f.httpFetch(ctx, rawURL, domainCfg)
	if err != nil {
		return &Page{URL: rawURL, AccessDenied: false}, nil //nolint:nilerr // final retry failure returns an empty record, run continues
	}

	if status == http.StatusForbidden {
		if domainCfg.BrowserOn403 {
			if browserPage, ok := f.tryBrowserPath(ctx, rawURL, false); ok {
				f.markRequiresBrowser(host)
				return browserPage, nil
			}
		}
		page.AccessDenied = true
		return page, nil
	}
	if status != http.StatusOK {
		return page, nil
	}

	if len(page.Body) < ThinContentFallbackThreshold {
		if browserPage, ok := f.tryBrowserPath(ctx, rawURL, false); ok {
			f.markRequiresBrowser(host)
			return browserPage, nil
		}
		f.dumpDebug(rawURL, []byte(page.HTML))
	}

	return page, nil
}

// shouldTryBrowserFirst decides whether to skip the HTTP attempt.
func (f *Fetcher) shouldTryBrowserFirst(u *url.URL) bool {
	if f.browser == nil {
		return false
	}
	if f.cfg.PreferBrowserGlobal {
		return true
	}
	if f.cfg.VisualAnalysisOn && (u.Path == "" || u.Path == "/") {
		return true
	}
	return f.requiresBrowser(u.Host)
}

func (f *Fetcher) requiresBrowser(host string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.domainRequiresBrowser[host]
}

func (f *Fetcher) markRequiresBrowser(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domainRequiresBrowser[host] = true
}

// tryBrowserPath checks robots, then submits to the browser controller.
// Returns ok=false when robots disallow, the browser is unset, or the
// result is empty/access-denied (callers should fall through to HTTP).
func (f *Fetcher) tryBrowserPath(ctx context.Context, rawURL string, captureScreenshot bool) (*Page, bool) {
	if f.browser == nil {
		return nil, false
	}
	if !f.robots.IsAllowed(ctx, rawURL, f.cfg.UserAgent) {
		return nil, false
	}
	result, err := f.browser.FetchPage(ctx, rawURL, f.cfg.UserAgent, captureScreenshot, f.cfg.BrowserTimeout)
	if err != nil || result == nil {
		return nil, false
	}
	if result.AccessDenied || strings.TrimSpace(result.HTML) == "" {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return nil, false
	}
	body := ExtractBody(doc)
	if body == "" {
		return nil, false
	}

	u, _ := url.Parse(rawURL)
	host := ""
	if u != nil {
		host = u.Host
	}
	privacy, terms := ExtractFooterLinks(doc, rawURL)
	page := &Page{
		URL:            rawURL,
		Title:          firstNonEmpty(result.Title, ExtractTitle(doc)),
		Body:           body,
		StructuredBody: ExtractStructuredBody(doc),
		PrivacyURL:     privacy,
		TermsURL:       terms,
		Verification:   ExtractVerificationBadge(doc, host),
		ScreenshotRef:  result.ScreenshotRef,
		AccessDenied:   false,
		StatusCode:     result.StatusCode,
		HTML:           result.HTML,
	}
	return page, true
}

// httpFetch executes the HTTP retry loop, returning the page
// record, the final HTTP status, and an error only on total exhaustion.
func (f *Fetcher) httpFetch(ctx context.Context, rawURL string, domainCfg DomainConfig) (*Page, int, error) {
	var lastErr error
	for attempt := 1; attempt <= domainCfg.MaxRetries; attempt++ {
		if attempt == 1 {
			f.limiter.WaitFor(rawURL)
		} else {
			jitter := time.Duration(rand.Int63n(int64(domainCfg.RandomDelay) + 1)) //nolint:gosec // jitter, not security-sensitive
			time.Sleep(jitter)
		}

		reqCtx, cancel := context.WithTimeout(ctx, domainCfg.Timeout)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			cancel()
			return nil, 0, err
		}
		req.Header = BrowserHeaders(f.cfg.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			cancel()
			lastErr = err
			backoff := domainCfg.BaseBackoff * time.Duration(1<<uint(attempt-1))
			time.Sleep(backoff)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
		_ = resp.Body.Close()
		cancel()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		page, err := f.parseHTML(rawURL, body, resp.StatusCode)
		if err != nil {
			f.dumpDebug(rawURL, body)
			return page, resp.StatusCode, nil
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusForbidden {
			f.dumpDebug(rawURL, body)
		}
		return page, resp.StatusCode, nil
	}
	return nil, 0, lastErr
}

func (f *Fetcher) parseHTML(rawURL string, body []byte, status int) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return &Page{URL: rawURL, StatusCode: status}, err
	}
	privacy, terms := ExtractFooterLinks(doc, rawURL)
	u, _ := url.Parse(rawURL)
	host := ""
	if u != nil {
		host = u.Host
	}
	return &Page{
		URL:            rawURL,
		Title:          ExtractTitle(doc),
		Body:           ExtractBody(doc),
		StructuredBody: ExtractStructuredBody(doc),
		PrivacyURL:     privacy,
		TermsURL:       terms,
		Verification:   ExtractVerificationBadge(doc, host),
		StatusCode:     status,
		AccessDenied:   status == http.StatusForbidden,
		HTML:           string(body),
	}, nil
}

// dumpDebug writes raw HTML to the configured debug directory keyed by a
// sanitised URL prefix.
func (f *Fetcher) dumpDebug(rawURL string, body []byte) {
	if f.cfg.DebugDir == "" {
		return
	}
	sum := sha1.Sum([]byte(rawURL)) //nolint:gosec // filename digest, not a security boundary
	name := sanitizeURLPrefix(rawURL) + "_" + hex.EncodeToString(sum[:4]) + ".html"
	if err := os.MkdirAll(f.cfg.DebugDir, 0o755); err != nil {
		slog.Warn("fetch: failed to create debug dir", "error", err)
		return
	}
	path := filepath.Join(f.cfg.DebugDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		slog.Warn("fetch: failed to write debug dump", "path", path, "error", err)
	}
}

// sanitizeURLPrefix reduces a URL to a filesystem-safe prefix for debug
// dump filenames.
func sanitizeURLPrefix(rawURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 60 {
			break
		}
	}
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
