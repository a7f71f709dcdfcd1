// trustcollect runs the TrustStack collection & scoring engine: it loads
// trust.yaml, wires the rate limiter, robots cache, classifier, headless
// browser, fetcher, search providers, collector, attribute detector,
// aggregator and scoring pipeline into a run orchestrator, opens the
// Postgres-backed store, and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/allthingstrust/truststack/pkg/api"
	"github.com/allthingstrust/truststack/pkg/attributes"
	"github.com/allthingstrust/truststack/pkg/browser"
	"github.com/allthingstrust/truststack/pkg/collector"
	"github.com/allthingstrust/truststack/pkg/config"
	"github.com/allthingstrust/truststack/pkg/fetch"
	"github.com/allthingstrust/truststack/pkg/orchestrator"
	"github.com/allthingstrust/truststack/pkg/ratelimit"
	"github.com/allthingstrust/truststack/pkg/robots"
	"github.com/allthingstrust/truststack/pkg/scoring"
	"github.com/allthingstrust/truststack/pkg/search"
	"github.com/allthingstrust/truststack/pkg/store"
	"github.com/allthingstrust/truststack/pkg/version"
	"github.com/allthingstrust/truststack/pkg/whois"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no %s found, continuing with existing environment variables", envPath)
	}

	cfg, err := config.Load(filepath.Join(*configDir, "trust.yaml"))
	if err != nil {
		log.Fatalf("load trust.yaml: %v", err)
	}

	ctx := context.Background()

	dbCfg, err := store.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}
	db, err := store.New(ctx, dbCfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer db.Close()

	limiter := ratelimit.New(cfg.RateLimit.DefaultInterval)
	robotsCache := robots.New(limiter)
	whoisClient := whois.New()

	browserCtl := browser.New(cfg.Browser.Headless, screenshotDir(*configDir))
	if err := browserCtl.Start(); err != nil {
		slog.Warn("headless browser failed to start, falling back to HTTP-only fetching", "error", err)
	}
	defer browserCtl.Close()

	fetcher := fetch.New(fetch.Config{
		UserAgent:           cfg.Fetch.UserAgent,
		DebugDir:            cfg.Fetch.DebugDir,
		VisualAnalysisOn:    cfg.Fetch.VisualAnalysis,
		PreferBrowserGlobal: cfg.Fetch.PreferBrowserGlobal,
		BrowserTimeout:      cfg.Fetch.BrowserTimeout,
	}, limiter, robotsCache, browserCtl)

	braveProvider := search.NewBraveProvider(search.BraveConfig{
		APIKey:            cfg.Search.BraveAPIKey,
		AuthMode:          search.BraveAuthMode(cfg.Search.BraveAuthMode),
		MaxPerRequest:     cfg.Search.BraveMaxPerRequest,
		Timeout:           cfg.Search.BraveTimeout,
		AllowHTMLFallback: cfg.Search.BraveAllowHTMLFallback,
		RequestInterval:   cfg.Search.BraveRequestInterval,
	})
	serperProvider := search.NewSerperProvider(search.SerperConfig{
		APIKey:          cfg.Search.SerperAPIKey,
		Timeout:         cfg.Search.SerperTimeout,
		RequestInterval: cfg.Search.SerperRequestInterval,
	})

	collectors := map[string]orchestrator.SourceCollector{
		"brave":  collector.New(fetcher, robotsCache, braveProvider),
		"serper": collector.New(fetcher, robotsCache, serperProvider),
	}

	detector := attributes.NewDetector(cfg.Rubric.EnabledAttributes)
	costTracker := scoring.NewCostTracker(nil, scoring.QuotaThresholds{
		MaxInputTokens:  cfg.Cost.MaxInputTokens,
		MaxOutputTokens: cfg.Cost.MaxOutputTokens,
		MaxUSD:          cfg.Cost.MaxUSD,
	})

	var scoringService scoring.Service
	if cfg.Scoring.Endpoint != "" {
		scoringService = scoring.NewHTTPService(scoring.HTTPServiceConfig{
			Endpoint: cfg.Scoring.Endpoint,
			APIKey:   cfg.Scoring.APIKey,
			Timeout:  cfg.Scoring.Timeout,
		})
	}

	pipeline := scoring.NewPipeline(detector, scoringService, cfg.AggregatorSignals(), costTracker)
	pipeline.Persist = db.Assets

	orc := orchestrator.New(db.Brands, db.Scenarios, db.Runs, db.Assets, db.Summaries, collectors, fetcher, pipeline, nil)
	orc.UserAgent = cfg.Fetch.UserAgent
	orc.Whois = whoisClient

	server := api.NewServer(cfg, orc, db)

	go runRetentionLoop(ctx, db, cfg.Retention.PruneAfterDays)

	slog.Info("starting trustcollect", "version", version.Full(), "addr", cfg.Server.Addr)
	if err := server.Run(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server: %v", err)
	}
}

// runRetentionLoop prunes runs older than pruneAfterDays once a day until
// ctx is cancelled.
func runRetentionLoop(ctx context.Context, db *store.Store, pruneAfterDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.Runs.PruneOldRuns(ctx, pruneAfterDays)
			if err != nil {
				slog.Error("retention: prune failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("retention: pruned old runs", "count", n)
			}
		}
	}
}

// screenshotDir resolves (and ensures) the directory screenshots are
// written to; the thin fs-backed browser.ScreenshotSink lives in pkg/api.
func screenshotDir(configDir string) *api.FileScreenshotSink {
	dir := getEnv("AR_SCREENSHOT_DIR", filepath.Join(configDir, "screenshots"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("create screenshot dir %s: %v", dir, err)
	}
	return api.NewFileScreenshotSink(dir)
}
