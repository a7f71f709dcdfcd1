package config

import "time"

// BrandEntry is one brand's classifier and display configuration, keyed by
// slug in the top-level `brands` map of trust.yaml.
type BrandEntry struct {
	Name               string              `yaml:"name"`
	Industry           string              `yaml:"industry,omitempty"`
	Domains            []string            `yaml:"domains"`
	Subdomains         []string            `yaml:"subdomains,omitempty"`
	SocialHandles      map[string][]string `yaml:"social_handles,omitempty"`
	BrandOwnedRatio    float64             `yaml:"brand_owned_ratio,omitempty"`
	ThirdPartyRatio    float64             `yaml:"third_party_ratio,omitempty"`
}

// ScenarioEntry is one named analysis playbook, keyed by slug under
// `scenarios`. Extra carries whatever scenario-specific knobs the caller
// wants preserved verbatim in Scenario.Config.
type ScenarioEntry struct {
	Description string         `yaml:"description,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// SignalEntry mirrors aggregator.SignalDefinition in YAML form.
type SignalEntry struct {
	ID       string  `yaml:"id" validate:"required"`
	Weight   float64 `yaml:"weight" validate:"required,gt=0"`
	Knockout bool    `yaml:"knockout,omitempty"`
	Core     bool    `yaml:"core,omitempty"`
}

// DimensionEntry mirrors aggregator.DimensionConfig in YAML form.
type DimensionEntry struct {
	Signals     []SignalEntry `yaml:"signals" validate:"required,dive"`
	MinCoverage int           `yaml:"min_coverage,omitempty"`
	Weight      float64       `yaml:"weight" validate:"required,gt=0"`
}

// RubricConfig is the scoring rubric: which attribute detectors run and how
// their outputs are weighted per dimension.
type RubricConfig struct {
	EnabledAttributes []string                  `yaml:"enabled_attributes" validate:"required,min=1"`
	Dimensions        map[string]DimensionEntry `yaml:"dimensions" validate:"required,min=1,dive"`
}

// SearchConfig carries both providers' credentials and tuning knobs.
type SearchConfig struct {
	Provider string `yaml:"provider,omitempty"` // "brave" or "serper"

	BraveAPIKey           string        `yaml:"-"` // BRAVE_API_KEY
	BraveAuthMode         string        `yaml:"brave_auth_mode,omitempty"`
	BraveMaxPerRequest    int           `yaml:"brave_max_per_request,omitempty"`
	BraveTimeout          time.Duration `yaml:"brave_timeout,omitempty"`
	BraveAllowHTMLFallback bool         `yaml:"brave_allow_html_fallback,omitempty"`
	BraveRequestInterval  time.Duration `yaml:"brave_request_interval,omitempty"`

	SerperAPIKey          string        `yaml:"-"` // SERPER_API_KEY
	SerperTimeout         time.Duration `yaml:"serper_timeout,omitempty"`
	SerperRequestInterval time.Duration `yaml:"serper_request_interval,omitempty"`
}

// FetchConfig carries page-fetch tuning.
type FetchConfig struct {
	UserAgent           string        `yaml:"user_agent,omitempty"`
	DebugDir            string        `yaml:"debug_dir,omitempty"` // AR_FETCH_DEBUG_DIR
	BrowserTimeout      time.Duration `yaml:"browser_timeout,omitempty"`
	ParallelWorkers     int           `yaml:"parallel_workers,omitempty"` // AR_PARALLEL_FETCH_WORKERS
	PreferBrowserGlobal bool          `yaml:"-"`                          // AR_USE_PLAYWRIGHT
	VisualAnalysis      bool          `yaml:"visual_analysis,omitempty"`  // browser-first on site roots + screenshot capture
}

// BrowserConfig controls the singleton headless-browser controller.
type BrowserConfig struct {
	Headless bool `yaml:"-"` // HEADLESS_MODE env; true when unset
}

// RateLimitConfig sets the default per-domain request intervals.
type RateLimitConfig struct {
	DefaultInterval  time.Duration `yaml:"default_interval,omitempty"`
	SearchInterval   time.Duration `yaml:"search_interval,omitempty"`
}

// RetentionConfig controls smart-reuse and run pruning.
type RetentionConfig struct {
	MaxAssetAgeHours int `yaml:"max_asset_age_hours,omitempty"` // default 24
	PruneAfterDays   int `yaml:"prune_after_days,omitempty"`
}

// CostConfig carries the LLM-usage quota alarms.
type CostConfig struct {
	MaxInputTokens  int64   `yaml:"max_input_tokens,omitempty"`
	MaxOutputTokens int64   `yaml:"max_output_tokens,omitempty"`
	MaxUSD          float64 `yaml:"max_usd,omitempty"`
}

// ScoringServiceConfig points at the injectable LLM/visual scoring service.
type ScoringServiceConfig struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	APIKey   string        `yaml:"-"` // SCORING_API_KEY
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ServerConfig is the HTTP API bind address.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config is the root of trust.yaml: brands, scenarios, the scoring rubric,
// and every ambient-infrastructure knob the orchestrator wires at startup.
type Config struct {
	Server      ServerConfig            `yaml:"server,omitempty"`
	Brands      map[string]BrandEntry   `yaml:"brands,omitempty"`
	Scenarios   map[string]ScenarioEntry `yaml:"scenarios,omitempty"`
	Rubric      RubricConfig            `yaml:"rubric" validate:"required"`
	Search      SearchConfig            `yaml:"search,omitempty"`
	Fetch       FetchConfig             `yaml:"fetch,omitempty"`
	Browser     BrowserConfig           `yaml:"browser,omitempty"`
	RateLimit   RateLimitConfig         `yaml:"rate_limit,omitempty"`
	Retention   RetentionConfig         `yaml:"retention,omitempty"`
	Cost        CostConfig              `yaml:"cost,omitempty"`
	Scoring     ScoringServiceConfig    `yaml:"scoring,omitempty"`
}
