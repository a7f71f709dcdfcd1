package orchestrator

import (
	"github.com/allthingstrust/truststack/pkg/classifier"
	"github.com/allthingstrust/truststack/pkg/models"
)

// ScenarioConfig carries the classifier and model-selection knobs nested
// under the `scenario_config` key of the run config.
type ScenarioConfig struct {
	SearchProvider        string // "brave" or "serper"
	BrandDomains          []string
	BrandSubdomains       []string
	BrandSocialHandles    map[string][]string
	BrandOwnedRatio       float64 // brand_owned_ratio + third_party_ratio sum to 1.0
	ThirdPartyRatio       float64
	SummaryModel          string
	RecommendationsModel  string
	SearchModel           string
}

// Config is the RunAnalysis config map, typed.
type Config struct {
	BrandName            string
	ScenarioName         string
	ScenarioDescription  string
	Assets               []models.ContentAsset // caller-supplied, skips collection when non-empty
	Sources              []string               // {web, brave, serper, reddit, youtube}
	Keywords             []string
	Limit                int // per-keyword target count, default 10
	ReuseData            *bool
	MaxAssetAgeHours      int // default 24
	ScenarioConfig        ScenarioConfig
	VisualAnalysisEnabled bool
	ExportToS3            bool
	S3Bucket              string
	HeadlessMode          bool
}

func (c *Config) applyDefaults() {
	if c.Limit <= 0 {
		c.Limit = 10
	}
	if c.MaxAssetAgeHours <= 0 {
		c.MaxAssetAgeHours = 24
	}
	if c.ReuseData == nil {
		reuse := true
		c.ReuseData = &reuse
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{"web"}
	}
	if c.ScenarioConfig.BrandOwnedRatio == 0 && c.ScenarioConfig.ThirdPartyRatio == 0 {
		c.ScenarioConfig.BrandOwnedRatio = 0.5
		c.ScenarioConfig.ThirdPartyRatio = 0.5
	}
}

func (c *Config) reuseEnabled() bool {
	return c.ReuseData == nil || *c.ReuseData
}

func (c *Config) brandConfig() classifier.BrandConfig {
	return classifier.BrandConfig{
		BrandDomains:       c.ScenarioConfig.BrandDomains,
		BrandSubdomains:    c.ScenarioConfig.BrandSubdomains,
		BrandSocialHandles: c.ScenarioConfig.BrandSocialHandles,
		BrandOwnedRatio:    c.ScenarioConfig.BrandOwnedRatio,
	}
}
