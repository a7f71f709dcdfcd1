package orchestrator

import (
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/scoring"
)

// ReportAsset pairs one persisted asset with its scoring outcome.
type ReportAsset struct {
	Asset     models.ContentAsset
	Scores    models.DimensionScores
	Rationale map[string]any
	Skipped   bool
	SkipReason string
}

// Report is what gets handed back to API callers: the run, its assets with
// merged rationale, the run summary, and derived views.
type Report struct {
	Run                *models.Run
	Assets             []ReportAsset
	Summary            *models.TrustStackSummary
	BlockedURLs        []string
	DimensionBreakdown map[string]float64
}

// buildReport merges each asset's meta_info with its scoring rationale,
// surfaces the blocked_urls list, and computes the dimension-breakdown
// averages already present on summary.
func buildReport(run *models.Run, assets []models.ContentAsset, results []scoring.AssetResult, summary *models.TrustStackSummary) *Report {
	byID := make(map[string]scoring.AssetResult, len(results))
	for _, r := range results {
		byID[r.AssetID] = r
	}

	reportAssets := make([]ReportAsset, len(assets))
	var blocked []string
	for i, asset := range assets {
		ra := ReportAsset{Asset: asset}
		if r, ok := byID[asset.ID]; ok {
			ra.Scores = r.Scores
			ra.Rationale = r.Scores.Rationale
			ra.Skipped = r.Skipped
			ra.SkipReason = r.SkipReason
		}
		reportAssets[i] = ra
		if asset.AccessDenied() {
			blocked = append(blocked, asset.URL)
		}
	}

	breakdown := map[string]float64{}
	if summary != nil {
		breakdown["provenance"] = summary.Provenance
		breakdown["verification"] = summary.Verification
		breakdown["transparency"] = summary.Transparency
		breakdown["coherence"] = summary.Coherence
		breakdown["resonance"] = summary.Resonance
		breakdown["overall"] = summary.OverallScore
	}

	return &Report{
		Run:                run,
		Assets:             reportAssets,
		Summary:            summary,
		BlockedURLs:        blocked,
		DimensionBreakdown: breakdown,
	}
}

// RebuildReport reassembles a Report from persisted rows for the HTTP
// API's report-retrieval endpoint, which has no in-memory scoring.AssetResult
// to draw from and must read dimension scores back out of the store instead.
func RebuildReport(run *models.Run, assets []models.ContentAsset, scores map[string]models.DimensionScores, summary *models.TrustStackSummary) *Report {
	reportAssets := make([]ReportAsset, len(assets))
	var blocked []string
	for i, asset := range assets {
		ra := ReportAsset{Asset: asset}
		if s, ok := scores[asset.ID]; ok {
			ra.Scores = s
			ra.Rationale = s.Rationale
		}
		reportAssets[i] = ra
		if asset.AccessDenied() {
			blocked = append(blocked, asset.URL)
		}
	}

	breakdown := map[string]float64{}
	if summary != nil {
		breakdown["provenance"] = summary.Provenance
		breakdown["verification"] = summary.Verification
		breakdown["transparency"] = summary.Transparency
		breakdown["coherence"] = summary.Coherence
		breakdown["resonance"] = summary.Resonance
		breakdown["overall"] = summary.OverallScore
	}

	return &Report{
		Run:                run,
		Assets:             reportAssets,
		Summary:            summary,
		BlockedURLs:        blocked,
		DimensionBreakdown: breakdown,
	}
}
