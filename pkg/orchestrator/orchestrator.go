package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allthingstrust/truststack/pkg/classifier"
	"github.com/allthingstrust/truststack/pkg/collector"
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/scoring"
	"github.com/allthingstrust/truststack/pkg/whois"
)

// Orchestrator wires together collection, scoring and persistence for one
// (brand, scenario) run at a time. Construct once and reuse across runs; it
// carries no per-run mutable state.
type Orchestrator struct {
	Brands     BrandStore
	Scenarios  ScenarioStore
	Runs       RunStore
	Assets     AssetStore
	Summaries  SummaryStore
	Collectors map[string]SourceCollector // keyed by resolved source: brave, serper, reddit, youtube
	Fetcher    Fetcher
	Pipeline   *scoring.Pipeline
	Exporter   Exporter
	UserAgent  string
	Whois      *whois.Client // optional; nil disables domain-age/privacy enrichment
}

// New constructs an Orchestrator. Exporter defaults to NoopExporter when nil.
func New(brands BrandStore, scenarios ScenarioStore, runs RunStore, assets AssetStore, summaries SummaryStore, collectors map[string]SourceCollector, fetcher Fetcher, pipeline *scoring.Pipeline, exporter Exporter) *Orchestrator {
	if exporter == nil {
		exporter = NoopExporter{}
	}
	return &Orchestrator{
		Brands: brands, Scenarios: scenarios, Runs: runs, Assets: assets, Summaries: summaries,
		Collectors: collectors, Fetcher: fetcher, Pipeline: pipeline, Exporter: exporter,
	}
}

// RunAnalysis executes one full run: resolve brand/scenario, collect,
// score, persist, finalize.
func (o *Orchestrator) RunAnalysis(ctx context.Context, brandSlug, scenarioSlug string, cfg Config) (*Report, error) {
	cfg.applyDefaults()
	logger := slog.With("brand_slug", brandSlug, "scenario_slug", scenarioSlug)

	brand, err := o.Brands.GetOrCreateBrand(ctx, brandSlug, cfg.BrandName, cfg.ScenarioConfig.BrandDomains)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve brand: %w", err)
	}
	scenario, err := o.Scenarios.GetOrCreateScenario(ctx, scenarioSlug, cfg.ScenarioDescription, scenarioConfigToMap(cfg.ScenarioConfig))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve scenario: %w", err)
	}

	run := &models.Run{
		ID:         uuid.New().String(),
		ExternalID: generateExternalID(brandSlug),
		BrandID:    brand.ID,
		ScenarioID: scenario.ID,
		Status:     models.RunStatusPending,
		Config:     configToMap(cfg),
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.Runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("orchestrator: create run: %w", err)
	}
	logger = logger.With("run_id", run.ExternalID)

	startedAt := time.Now().UTC()
	run.StartedAt = &startedAt
	run.Status = models.RunStatusInProgress
	if err := o.Runs.UpdateRunStatus(ctx, run.ID, models.RunStatusInProgress, ""); err != nil {
		logger.Warn("orchestrator: failed to record in_progress transition", "error", err)
	}

	assets, err := o.collectAssets(ctx, logger, run, brand, cfg)
	if err != nil {
		return o.fail(ctx, run, assets, nil, err)
	}

	if err := o.Assets.SaveAssets(ctx, assets); err != nil {
		return o.fail(ctx, run, assets, nil, fmt.Errorf("orchestrator: persist assets: %w", err))
	}

	assetIDs := make([]string, len(assets))
	contents := make([]*models.NormalizedContent, len(assets))
	for i := range assets {
		assetIDs[i] = assets[i].ID
		contents[i] = buildNormalizedContent(ctx, &assets[i], o.Whois)
	}

	results, err := o.Pipeline.Run(ctx, assetIDs, contents)
	if err != nil {
		return o.fail(ctx, run, assets, results, fmt.Errorf("orchestrator: scoring: %w", err))
	}

	summary := buildSummary(run.ID, results)
	if err := o.Summaries.SaveSummary(ctx, summary); err != nil {
		return o.fail(ctx, run, assets, results, fmt.Errorf("orchestrator: persist summary: %w", err))
	}

	finishedAt := time.Now().UTC()
	run.FinishedAt = &finishedAt
	run.Status = models.RunStatusCompleted
	if err := o.Runs.UpdateRunStatus(ctx, run.ID, models.RunStatusCompleted, ""); err != nil {
		logger.Warn("orchestrator: failed to record completed transition", "error", err)
	}

	report := buildReport(run, assets, results, summary)

	if cfg.ExportToS3 {
		if err := o.Exporter.Export(ctx, run, report); err != nil {
			logger.Warn("orchestrator: export failed, run remains completed", "error", err)
		}
	}

	return report, nil
}

// fail records the run as failed but still returns
// whatever partial assets/scores were collected so callers can render a
// partial report.
func (o *Orchestrator) fail(ctx context.Context, run *models.Run, assets []models.ContentAsset, results []scoring.AssetResult, cause error) (*Report, error) {
	run.Status = models.RunStatusFailed
	run.ErrorMessage = cause.Error()
	finishedAt := time.Now().UTC()
	run.FinishedAt = &finishedAt
	if err := o.Runs.UpdateRunStatus(ctx, run.ID, models.RunStatusFailed, cause.Error()); err != nil {
		slog.Warn("orchestrator: failed to record failed transition", "run_id", run.ExternalID, "error", err)
	}
	partial := buildReport(run, assets, results, buildSummary(run.ID, results))
	return partial, cause
}

// collectAssets gathers the run's assets: caller-supplied assets take
// priority over collection; otherwise smart reuse narrows per-keyword
// targets and excluded URLs before the collector pool runs.
func (o *Orchestrator) collectAssets(ctx context.Context, logger *slog.Logger, run *models.Run, brand *models.Brand, cfg Config) ([]models.ContentAsset, error) {
	if len(cfg.Assets) > 0 {
		return o.fillCallerSuppliedAssets(ctx, run, cfg)
	}

	excluded := map[string]bool{}
	perKeywordLimit := cfg.Limit
	var reused []models.ContentAsset

	if cfg.reuseEnabled() {
		maxAge := time.Duration(cfg.MaxAssetAgeHours) * time.Hour
		cached, err := o.Assets.RecentAssetsForBrand(ctx, brand.ID, maxAge)
		if err != nil {
			logger.Warn("orchestrator: smart-reuse lookup failed, collecting fresh", "error", err)
		} else if len(cached) > 0 {
			reused = make([]models.ContentAsset, len(cached))
			for i, a := range cached {
				a.ID = uuid.New().String()
				a.RunID = run.ID
				reused[i] = a
				excluded[a.URL] = true
			}
			reduction := len(reused)
			if reduction < perKeywordLimit {
				perKeywordLimit -= reduction
			} else {
				perKeywordLimit = 0
			}
			logger.Info("orchestrator: smart reuse applied", "reused_count", len(reused), "remaining_per_keyword", perKeywordLimit)
		}
	}

	collected := make([]models.ContentAsset, 0, len(cfg.Keywords)*perKeywordLimit)
	if perKeywordLimit > 0 {
		brandCfg := cfg.brandConfig()
		for _, keyword := range cfg.Keywords {
			for _, source := range cfg.Sources {
				resolved := resolveSource(source, cfg.ScenarioConfig.SearchProvider)
				col, ok := o.Collectors[resolved]
				if !ok {
					logger.Warn("orchestrator: no collector wired for source, skipping", "source", resolved)
					continue
				}
				ccfg := collector.Config{
					TargetCount:     perKeywordLimit,
					ExcludedURLs:    excluded,
					Brand:           brandCfg,
					BrandOwnedRatio: cfg.ScenarioConfig.BrandOwnedRatio,
					ThirdPartyRatio: cfg.ScenarioConfig.ThirdPartyRatio,
					UserAgent:       o.UserAgent,
				}
				result := col.Collect(ctx, keyword, ccfg)
				for i := range result.Assets {
					result.Assets[i].ID = uuid.New().String()
					result.Assets[i].RunID = run.ID
					if result.Assets[i].SourceType == "" {
						result.Assets[i].SourceType = models.SourceType(source)
					}
					excluded[result.Assets[i].URL] = true
				}
				collected = append(collected, result.Assets...)
			}
		}
	}

	return append(reused, collected...), nil
}

// resolveSource maps the logical "web" source to the configured search
// provider, defaulting to Brave when none is set.
func resolveSource(source, configuredProvider string) string {
	if source != "web" {
		return source
	}
	if configuredProvider != "" {
		return configuredProvider
	}
	return "brave"
}

// fillCallerSuppliedAssets fetches bodies for any caller-supplied asset
// missing content.
func (o *Orchestrator) fillCallerSuppliedAssets(ctx context.Context, run *models.Run, cfg Config) ([]models.ContentAsset, error) {
	assets := make([]models.ContentAsset, len(cfg.Assets))
	copy(assets, cfg.Assets)

	brandCfg := cfg.brandConfig()
	var missingIdx []int
	var missingURLs []string
	for i := range assets {
		if assets[i].ID == "" {
			assets[i].ID = uuid.New().String()
		}
		assets[i].RunID = run.ID
		if !assets[i].HasContent() {
			missingIdx = append(missingIdx, i)
			missingURLs = append(missingURLs, assets[i].URL)
		}
	}

	if len(missingURLs) > 0 && o.Fetcher != nil {
		pages := o.Fetcher.FetchAll(ctx, missingURLs, 5)
		for j, idx := range missingIdx {
			page := pages[j]
			if page == nil {
				continue
			}
			assets[idx].Title = firstNonEmpty(assets[idx].Title, page.Title)
			assets[idx].RawContent = page.HTML
			assets[idx].NormalizedContent = page.Body
			if assets[idx].MetaInfo == nil {
				assets[idx].MetaInfo = map[string]any{}
			}
			assets[idx].MetaInfo["access_denied"] = page.AccessDenied
			assets[idx].MetaInfo["privacy_url"] = page.PrivacyURL
			assets[idx].MetaInfo["terms_url"] = page.TermsURL
		}
	}

	for i := range assets {
		if assets[i].Ownership == "" {
			classified := classifier.Classify(assets[i].URL, brandCfg)
			assets[i].Ownership = classified.SourceType
			assets[i].Tier = classified.Tier
		}
		if assets[i].Modality == "" {
			assets[i].Modality = models.ModalityText
		}
		if assets[i].SourceType == "" {
			assets[i].SourceType = models.SourceTypeWeb
		}
	}

	return assets, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func scenarioConfigToMap(sc ScenarioConfig) map[string]any {
	return map[string]any{
		"search_provider":        sc.SearchProvider,
		"brand_domains":          sc.BrandDomains,
		"brand_subdomains":       sc.BrandSubdomains,
		"brand_social_handles":   sc.BrandSocialHandles,
		"summary_model":          sc.SummaryModel,
		"recommendations_model":  sc.RecommendationsModel,
		"search_model":           sc.SearchModel,
	}
}

func configToMap(cfg Config) map[string]any {
	return map[string]any{
		"brand_name":              cfg.BrandName,
		"scenario_name":           cfg.ScenarioName,
		"scenario_description":    cfg.ScenarioDescription,
		"sources":                 cfg.Sources,
		"keywords":                cfg.Keywords,
		"limit":                   cfg.Limit,
		"reuse_data":              cfg.reuseEnabled(),
		"max_asset_age_hours":     cfg.MaxAssetAgeHours,
		"scenario_config":         scenarioConfigToMap(cfg.ScenarioConfig),
		"visual_analysis_enabled": cfg.VisualAnalysisEnabled,
		"export_to_s3":            cfg.ExportToS3,
		"s3_bucket":               cfg.S3Bucket,
		"headless_mode":           cfg.HeadlessMode,
	}
}

func buildSummary(runID string, results []scoring.AssetResult) *models.TrustStackSummary {
	summary := &models.TrustStackSummary{ID: uuid.New().String(), RunID: runID}
	n := 0
	for _, r := range results {
		if r.Skipped {
			continue
		}
		n++
		summary.Provenance += r.Scores.Provenance
		summary.Verification += r.Scores.Verification
		summary.Transparency += r.Scores.Transparency
		summary.Coherence += r.Scores.Coherence
		summary.Resonance += r.Scores.Resonance
		summary.OverallScore += r.Scores.Overall
	}
	if n == 0 {
		return summary
	}
	summary.Provenance /= float64(n)
	summary.Verification /= float64(n)
	summary.Transparency /= float64(n)
	summary.Coherence /= float64(n)
	summary.Resonance /= float64(n)
	summary.OverallScore /= float64(n)
	return summary
}
