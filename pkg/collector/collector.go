// Package collector implements the producer/consumer URL collection
// pipeline: it drives a search provider, fans candidate URLs out to a
// bounded pool of fetch workers, and accumulates exactly target_count
// successfully fetched pages per query while respecting brand/third-party
// ratios and per-domain diversity caps.
package collector

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/allthingstrust/truststack/pkg/classifier"
	"github.com/allthingstrust/truststack/pkg/fetch"
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/search"
)

// Fetcher is the subset of *fetch.Fetcher the collector needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
	FetchAll(ctx context.Context, urls []string, workers int) []*fetch.Page
}

// RobotsChecker is the subset of *robots.Cache the collector needs.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, rawURL, userAgent string) bool
}

// Config configures a single collection run.
type Config struct {
	TargetCount         int
	PoolSize            int // default max(30, 5*TargetCount)
	MinBodyLength       int // default 200
	MinBrandBodyLength  int // default 75
	BrandOwnedRatio     float64
	ThirdPartyRatio     float64
	Workers             int // default 5
	SubPageExpansion    bool
	SubPageMaxLinks     int // default 15
	ExcludedURLs        map[string]bool
	UserAgent           string
	Brand               classifier.BrandConfig
}

func (c *Config) applyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = maxInt(30, 5*c.TargetCount)
	}
	if c.MinBodyLength <= 0 {
		c.MinBodyLength = fetch.MinBodyLength
	}
	if c.MinBrandBodyLength <= 0 {
		c.MinBrandBodyLength = 75
	}
	if c.Workers <= 0 {
		c.Workers = 5
	}
	if c.SubPageMaxLinks <= 0 {
		c.SubPageMaxLinks = 15
	}
	if c.BrandOwnedRatio == 0 && c.ThirdPartyRatio == 0 {
		c.BrandOwnedRatio, c.ThirdPartyRatio = 0.5, 0.5
	}
	if c.UserAgent == "" {
		c.UserAgent = fetch.DefaultUserAgent
	}
}

// Stats counts collector outcomes.
type Stats struct {
	Processed          int
	Fetched            int
	Valid              int
	ThinContent         int
	RobotsBlocked       int
	ErrorPage           int
	DomainLimitReached  int
	PoolFull            int
	NoURL               int
}

// Result is the outcome of a Collect call.
type Result struct {
	Assets []models.ContentAsset
	Stats  Stats
}

// collectorState holds every field shared between the producer and the
// consumer pool, all guarded by one mutex.
type collectorState struct {
	mu         sync.Mutex
	brandOwned []models.ContentAsset
	thirdParty []models.ContentAsset
	domainCounts map[string]int
	stats      Stats
	stopped    bool
}

func (s *collectorState) totalCollected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.brandOwned) + len(s.thirdParty)
}

func (s *collectorState) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *collectorState) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Collector runs one collection at a time; construct a new one per call or
// reuse across sequential calls (it carries no cross-call state).
type Collector struct {
	provider Fetcher
	robots   RobotsChecker
	search   search.Provider
}

// New constructs a Collector wired to the given fetch pool, robots cache,
// and search provider.
func New(f Fetcher, robots RobotsChecker, provider search.Provider) *Collector {
	return &Collector{provider: f, robots: robots, search: provider}
}

// errorPageMarkers are substrings checked case-insensitively against a
// fetched page's title.
var errorPageMarkers = []string{"access denied", "403", "404", "forbidden", "not found", "error"}

// excludedSubPaths are never followed during sub-page expansion.
var excludedSubPaths = []string{"/search", "/login", "/cart", "/checkout", "/signin", "/signup", "/account"}

// Collect runs the full producer/consumer pipeline for a single query and
// returns up to cfg.TargetCount assets.
func (c *Collector) Collect(ctx context.Context, query string, cfg Config) Result {
	cfg.applyDefaults()

	brandControlled := classifier.IsBrandControlled(cfg.Brand)
	targetBrand, targetThird := splitTargets(cfg.TargetCount, cfg.BrandOwnedRatio, cfg.ThirdPartyRatio)
	maxPerDomain := 0
	if !brandControlled {
		maxPerDomain = maxInt(1, int(math.Floor(0.2*float64(cfg.TargetCount))))
	}

	state := &collectorState{domainCounts: make(map[string]int)}
	chanCap := minInt(cfg.PoolSize, 50)
	if chanCap < 1 {
		chanCap = 1
	}
	urlCh := make(chan string, chanCap)

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func() {
			defer wg.Done()
			c.consume(ctx, state, urlCh, cfg, targetBrand, targetThird, maxPerDomain)
		}()
	}

	c.produce(ctx, state, urlCh, query, cfg, targetBrand, targetThird)
	close(urlCh)
	wg.Wait()

	return buildResult(state, cfg.TargetCount)
}

func buildResult(state *collectorState, target int) Result {
	state.mu.Lock()
	defer state.mu.Unlock()
	assets := make([]models.ContentAsset, 0, len(state.brandOwned)+len(state.thirdParty))
	assets = append(assets, state.brandOwned...)
	assets = append(assets, state.thirdParty...)
	if len(assets) > target {
		assets = assets[:target]
	}
	return Result{Assets: assets, Stats: state.stats}
}

// produce is the single producer loop, run synchronously on the caller's
// goroutine while the consumer pool drains the channel.
func (c *Collector) produce(ctx context.Context, state *collectorState, urlCh chan<- string, query string, cfg Config, targetBrand, targetThird int) {
	seenURLs := make(map[string]bool) // producer-side only, never shared
	for u := range cfg.ExcludedURLs {
		seenURLs[u] = true
	}

	offset := 0
	batchSize := initialBatchSize(cfg.TargetCount)
	fetchedAttempts := 0

	for {
		if ctx.Err() != nil {
			state.stop()
			return
		}
		total := state.totalCollected()
		if total >= cfg.TargetCount {
			state.stop()
			return
		}
		state.mu.Lock()
		processed := state.stats.Processed
		state.mu.Unlock()
		if processed >= cfg.PoolSize {
			state.stop()
			return
		}

		batch, err := c.search.Search(ctx, query, batchSize, offset)
		if err != nil {
			slog.Warn("collector: search provider error, stopping producer", "query", query, "error", err)
			state.stop()
			return
		}
		if len(batch) == 0 {
			state.stop()
			return
		}

		for _, r := range batch {
			if r.URL == "" || seenURLs[r.URL] {
				continue
			}
			seenURLs[r.URL] = true
			select {
			case urlCh <- r.URL:
			case <-ctx.Done():
				state.stop()
				return
			}
		}
		offset += len(batch)

		state.mu.Lock()
		fetchedAttempts = state.stats.Fetched
		valid := state.stats.Valid
		collected := len(state.brandOwned) + len(state.thirdParty)
		state.mu.Unlock()
		batchSize = adaptiveBatchSize(cfg.TargetCount, collected, fetchedAttempts, valid)

		time.Sleep(100 * time.Millisecond)
	}
}

func initialBatchSize(target int) int {
	if target <= 0 {
		return 10
	}
	if target > 20 {
		return 20
	}
	return target
}

// adaptiveBatchSize resizes search batches from the observed success rate.
func adaptiveBatchSize(target, collected, fetched, valid int) int {
	if fetched < 5 {
		return initialBatchSize(target)
	}
	successRate := float64(valid) / float64(fetched)
	switch {
	case successRate < 0.3:
		return 2 * target
	case successRate > 0.6:
		remaining := target - collected
		if remaining < 0 {
			remaining = 0
		}
		return maxInt(10, int(math.Ceil(float64(remaining)/successRate))+5)
	default:
		return target
	}
}

func splitTargets(target int, brandRatio, thirdRatio float64) (int, int) {
	targetBrand := int(math.Floor(float64(target) * brandRatio))
	targetThird := int(math.Floor(float64(target) * thirdRatio))
	remainder := target - targetBrand - targetThird
	if remainder > 0 {
		if brandRatio >= thirdRatio {
			targetBrand += remainder
		} else {
			targetThird += remainder
		}
	}
	return targetBrand, targetThird
}

// consume is one consumer goroutine's body.
func (c *Collector) consume(ctx context.Context, state *collectorState, urlCh <-chan string, cfg Config, targetBrand, targetThird, maxPerDomain int) {
	for rawURL := range urlCh {
		if state.isStopped() && state.totalCollected() >= cfg.TargetCount {
			return
		}

		state.mu.Lock()
		if len(state.brandOwned)+len(state.thirdParty) >= cfg.TargetCount {
			state.mu.Unlock()
			continue
		}
		state.stats.Processed++
		state.mu.Unlock()

		result := classifier.Classify(rawURL, cfg.Brand)

		if !c.robots.IsAllowed(ctx, rawURL, cfg.UserAgent) {
			state.mu.Lock()
			state.stats.RobotsBlocked++
			state.mu.Unlock()
			continue
		}

		page, err := c.provider.Fetch(ctx, rawURL)
		if err != nil || page == nil {
			continue
		}
		state.mu.Lock()
		state.stats.Fetched++
		state.mu.Unlock()

		isBrand := result.SourceType == models.OwnershipBrandOwned
		minLen := cfg.MinBodyLength
		if isBrand {
			minLen = cfg.MinBrandBodyLength
		}
		if len(page.Body) < minLen {
			state.mu.Lock()
			state.stats.ThinContent++
			state.mu.Unlock()
			continue
		}
		if looksLikeErrorPage(page.Title) {
			state.mu.Lock()
			state.stats.ErrorPage++
			state.mu.Unlock()
			continue
		}

		asset := assetFromPage(rawURL, page, result)
		admitted := c.admit(state, asset, isBrand, cfg, targetBrand, targetThird, maxPerDomain)

		if admitted && cfg.SubPageExpansion && isBrand {
			c.expandSubPages(ctx, state, rawURL, page, cfg, targetBrand, maxPerDomain)
		}
	}
}

// admit re-checks pool targets, class quotas and the domain cap under
// lock before accepting an asset.
func (c *Collector) admit(state *collectorState, asset models.ContentAsset, isBrand bool, cfg Config, targetBrand, targetThird, maxPerDomain int) bool {
	host := hostOf(asset.URL)

	state.mu.Lock()
	defer state.mu.Unlock()

	if len(state.brandOwned)+len(state.thirdParty) >= cfg.TargetCount {
		state.stats.PoolFull++
		return false
	}
	if isBrand {
		if len(state.brandOwned) >= targetBrand {
			state.stats.PoolFull++
			return false
		}
	} else if len(state.thirdParty) >= targetThird {
		state.stats.PoolFull++
		return false
	}
	if maxPerDomain > 0 && host != "" && state.domainCounts[host] >= maxPerDomain {
		state.stats.DomainLimitReached++
		return false
	}

	if host != "" {
		state.domainCounts[host]++
	}
	state.stats.Valid++
	if isBrand {
		state.brandOwned = append(state.brandOwned, asset)
	} else {
		state.thirdParty = append(state.thirdParty, asset)
	}
	return true
}

func looksLikeErrorPage(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range errorPageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func assetFromPage(rawURL string, page *fetch.Page, result classifier.Result) models.ContentAsset {
	asset := models.ContentAsset{
		URL:               rawURL,
		Title:             page.Title,
		RawContent:        page.HTML,
		NormalizedContent: page.Body,
		ScreenshotRef:     page.ScreenshotRef,
		Modality:          models.ModalityText,
		Ownership:         result.SourceType,
		Tier:              result.Tier,
		MetaInfo: map[string]any{
			"classification_reason": result.Reason,
			"privacy_url":           page.PrivacyURL,
			"terms_url":             page.TermsURL,
			"access_denied":         page.AccessDenied,
		},
	}
	if page.Verification != nil {
		asset.MetaInfo["verification"] = page.Verification
	}
	return asset
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
