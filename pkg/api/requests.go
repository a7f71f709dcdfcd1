package api

import "github.com/allthingstrust/truststack/pkg/orchestrator"

// createRunRequest is the JSON body of POST /api/v1/runs, mirroring the
// run_analysis config map.
type createRunRequest struct {
	BrandSlug             string                   `json:"brand_slug" binding:"required"`
	ScenarioSlug          string                   `json:"scenario_slug" binding:"required"`
	BrandName             string                   `json:"brand_name"`
	ScenarioName          string                   `json:"scenario_name"`
	ScenarioDescription   string                   `json:"scenario_description"`
	Sources               []string                 `json:"sources"`
	Keywords              []string                 `json:"keywords" binding:"required,min=1"`
	Limit                 int                      `json:"limit"`
	ReuseData             *bool                    `json:"reuse_data"`
	MaxAssetAgeHours      int                      `json:"max_asset_age_hours"`
	ScenarioConfig        scenarioConfigRequest    `json:"scenario_config"`
	VisualAnalysisEnabled bool                     `json:"visual_analysis_enabled"`
	ExportToS3            bool                     `json:"export_to_s3"`
	S3Bucket              string                   `json:"s3_bucket"`
	HeadlessMode          bool                     `json:"headless_mode"`
}

type scenarioConfigRequest struct {
	SearchProvider       string              `json:"search_provider"`
	BrandDomains         []string            `json:"brand_domains"`
	BrandSubdomains      []string            `json:"brand_subdomains"`
	BrandSocialHandles   map[string][]string `json:"brand_social_handles"`
	SummaryModel         string              `json:"summary_model"`
	RecommendationsModel string              `json:"recommendations_model"`
	SearchModel          string              `json:"search_model"`
	BrandOwnedRatio      float64             `json:"brand_owned_ratio"`
	ThirdPartyRatio      float64             `json:"third_party_ratio"`
}

// toOrchestratorConfig converts the wire request into orchestrator.Config.
func (req createRunRequest) toOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		BrandName:            req.BrandName,
		ScenarioName:         req.ScenarioName,
		ScenarioDescription:  req.ScenarioDescription,
		Sources:              req.Sources,
		Keywords:             req.Keywords,
		Limit:                req.Limit,
		ReuseData:            req.ReuseData,
		MaxAssetAgeHours:     req.MaxAssetAgeHours,
		VisualAnalysisEnabled: req.VisualAnalysisEnabled,
		ExportToS3:           req.ExportToS3,
		S3Bucket:             req.S3Bucket,
		HeadlessMode:         req.HeadlessMode,
		ScenarioConfig: orchestrator.ScenarioConfig{
			SearchProvider:       req.ScenarioConfig.SearchProvider,
			BrandDomains:         req.ScenarioConfig.BrandDomains,
			BrandSubdomains:      req.ScenarioConfig.BrandSubdomains,
			BrandSocialHandles:   req.ScenarioConfig.BrandSocialHandles,
			SummaryModel:         req.ScenarioConfig.SummaryModel,
			RecommendationsModel: req.ScenarioConfig.RecommendationsModel,
			SearchModel:          req.ScenarioConfig.SearchModel,
			BrandOwnedRatio:      req.ScenarioConfig.BrandOwnedRatio,
			ThirdPartyRatio:      req.ScenarioConfig.ThirdPartyRatio,
		},
	}
}
