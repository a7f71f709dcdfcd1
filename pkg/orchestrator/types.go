// Package orchestrator implements the run lifecycle: create or fetch
// brand/scenario, collect assets across configured sources, apply smart
// reuse, score and aggregate, persist, and build the final report.
package orchestrator

import (
	"context"
	"time"

	"github.com/allthingstrust/truststack/pkg/collector"
	"github.com/allthingstrust/truststack/pkg/fetch"
	"github.com/allthingstrust/truststack/pkg/models"
)

// BrandStore resolves or creates the Brand row for a run.
type BrandStore interface {
	GetOrCreateBrand(ctx context.Context, slug, name string, domains []string) (*models.Brand, error)
}

// ScenarioStore resolves or creates the Scenario row for a run.
type ScenarioStore interface {
	GetOrCreateScenario(ctx context.Context, slug, description string, config map[string]any) (*models.Scenario, error)
}

// RunStore persists Run lifecycle transitions.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.Run) error
	UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus, errMsg string) error
}

// AssetStore persists content assets and serves the smart-reuse query.
type AssetStore interface {
	SaveAssets(ctx context.Context, assets []models.ContentAsset) error
	RecentAssetsForBrand(ctx context.Context, brandID string, maxAge time.Duration) ([]models.ContentAsset, error)
}

// SummaryStore persists the per-run TrustStackSummary.
type SummaryStore interface {
	SaveSummary(ctx context.Context, summary *models.TrustStackSummary) error
}

// Exporter ships a completed run's report to an external object store.
// NoopExporter is the zero-configuration default.
type Exporter interface {
	Export(ctx context.Context, run *models.Run, report *Report) error
}

// NoopExporter performs no export. It is the default when no Exporter was
// wired; RunAnalysis calls no exporter at all when Config.ExportToS3 is false.
type NoopExporter struct{}

// Export implements Exporter.
func (NoopExporter) Export(context.Context, *models.Run, *Report) error { return nil }

// SourceCollector is the subset of *collector.Collector the orchestrator
// needs; lets tests substitute a stub.
type SourceCollector interface {
	Collect(ctx context.Context, query string, cfg collector.Config) collector.Result
}

// Fetcher is the subset of *fetch.Fetcher needed to fill in caller-supplied
// assets that are missing content.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
	FetchAll(ctx context.Context, urls []string, workers int) []*fetch.Page
}
