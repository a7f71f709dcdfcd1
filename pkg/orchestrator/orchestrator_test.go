package orchestrator

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allthingstrust/truststack/pkg/aggregator"
	"github.com/allthingstrust/truststack/pkg/attributes"
	"github.com/allthingstrust/truststack/pkg/collector"
	"github.com/allthingstrust/truststack/pkg/fetch"
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/scoring"
)

func testSignals() aggregator.TrustSignalsConfig {
	cfg := aggregator.TrustSignalsConfig{}
	for _, dim := range models.AllDimensions {
		cfg[dim] = aggregator.DimensionConfig{
			Signals: []aggregator.SignalDefinition{{ID: "llm_dimension_score", Weight: 1}},
			Weight:  1,
		}
	}
	return cfg
}

type stubScoreService struct{}

func (stubScoreService) ScoreBatch(ctx context.Context, items []*models.NormalizedContent) ([]*scoring.ContentScores, error) {
	out := make([]*scoring.ContentScores, len(items))
	for i := range items {
		out[i] = &scoring.ContentScores{Provenance: 0.7, Verification: 0.7, Transparency: 0.7, Coherence: 0.7, Resonance: 0.7}
	}
	return out, nil
}

func newTestPipeline() *scoring.Pipeline {
	return scoring.NewPipeline(attributes.NewDetector(nil), stubScoreService{}, testSignals(), nil)
}

type stubBrandStore struct{ brand *models.Brand }

func (s *stubBrandStore) GetOrCreateBrand(ctx context.Context, slug, name string, domains []string) (*models.Brand, error) {
	if s.brand != nil {
		return s.brand, nil
	}
	return &models.Brand{ID: "brand-1", Slug: slug, Name: name, Domains: domains}, nil
}

type stubScenarioStore struct{}

func (stubScenarioStore) GetOrCreateScenario(ctx context.Context, slug, description string, config map[string]any) (*models.Scenario, error) {
	return &models.Scenario{ID: "scenario-1", Slug: slug, Description: description, Config: config}, nil
}

type stubRunStore struct {
	created    *models.Run
	transitions []models.RunStatus
}

func (s *stubRunStore) CreateRun(ctx context.Context, run *models.Run) error {
	s.created = run
	return nil
}

func (s *stubRunStore) UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus, errMsg string) error {
	s.transitions = append(s.transitions, status)
	return nil
}

type stubAssetStore struct {
	saved       []models.ContentAsset
	saveErr     error
	recentOut   []models.ContentAsset
	recentErr   error
}

func (s *stubAssetStore) SaveAssets(ctx context.Context, assets []models.ContentAsset) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = assets
	return nil
}

func (s *stubAssetStore) RecentAssetsForBrand(ctx context.Context, brandID string, maxAge time.Duration) ([]models.ContentAsset, error) {
	return s.recentOut, s.recentErr
}

type stubSummaryStore struct {
	saved *models.TrustStackSummary
}

func (s *stubSummaryStore) SaveSummary(ctx context.Context, summary *models.TrustStackSummary) error {
	s.saved = summary
	return nil
}

type stubCollector struct {
	result     collector.Result
	lastConfig collector.Config
	calls      int
}

func (s *stubCollector) Collect(ctx context.Context, query string, cfg collector.Config) collector.Result {
	s.lastConfig = cfg
	s.calls++
	return s.result
}

type stubFetcher struct {
	pages []*fetch.Page
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	return &fetch.Page{URL: rawURL}, nil
}

func (s *stubFetcher) FetchAll(ctx context.Context, urls []string, workers int) []*fetch.Page {
	return s.pages
}

func longBody() string {
	body := ""
	for i := 0; i < 40; i++ {
		body += "substantial article content with many distinct words repeated here "
	}
	return body
}

func TestGenerateExternalID_Format(t *testing.T) {
	id := generateExternalID("nike")
	matched, err := regexp.MatchString(`^nike_\d{8}_\d{6}_[0-9a-f]{6}$`, id)
	require.NoError(t, err)
	assert.True(t, matched, "id was %q", id)
}

func TestResolveSource_WebDefaultsToBrave(t *testing.T) {
	assert.Equal(t, "brave", resolveSource("web", ""))
	assert.Equal(t, "serper", resolveSource("web", "serper"))
	assert.Equal(t, "reddit", resolveSource("reddit", "serper"))
}

func TestRunAnalysis_CollectsScoresAndPersists(t *testing.T) {
	col := &stubCollector{result: collector.Result{Assets: []models.ContentAsset{
		{URL: "https://example.com/a", Title: "A", NormalizedContent: longBody(), RawContent: "<html><body>hi</body></html>", Modality: models.ModalityText},
	}}}
	runs := &stubRunStore{}
	assetsStore := &stubAssetStore{}
	summaries := &stubSummaryStore{}

	o := New(&stubBrandStore{}, stubScenarioStore{}, runs, assetsStore, summaries,
		map[string]SourceCollector{"brave": col}, &stubFetcher{}, newTestPipeline(), nil)

	report, err := o.RunAnalysis(context.Background(), "nike", "quarterly", Config{
		Keywords: []string{"nike shoes"},
		Limit:    1,
		ReuseData: boolPtr(false),
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, col.calls)
	assert.Equal(t, models.RunStatusCompleted, report.Run.Status)
	assert.Len(t, assetsStore.saved, 1)
	assert.NotNil(t, summaries.saved)
	assert.Contains(t, runs.transitions, models.RunStatusInProgress)
	assert.Contains(t, runs.transitions, models.RunStatusCompleted)
	require.Len(t, report.Assets, 1)
	assert.InDelta(t, 7.0, report.Assets[0].Scores.Provenance, 0.01)
}

func TestRunAnalysis_SmartReuseExcludesCachedAndReducesTarget(t *testing.T) {
	col := &stubCollector{result: collector.Result{Assets: nil}}
	assetsStore := &stubAssetStore{recentOut: []models.ContentAsset{
		{ID: "old-1", URL: "https://example.com/cached", NormalizedContent: longBody(), RawContent: "<html></html>"},
	}}
	o := New(&stubBrandStore{}, stubScenarioStore{}, &stubRunStore{}, assetsStore, &stubSummaryStore{},
		map[string]SourceCollector{"brave": col}, &stubFetcher{}, newTestPipeline(), nil)

	report, err := o.RunAnalysis(context.Background(), "nike", "quarterly", Config{
		Keywords: []string{"nike shoes"},
		Limit:    3,
	})
	require.NoError(t, err)
	require.Len(t, report.Assets, 1)
	assert.Equal(t, "https://example.com/cached", report.Assets[0].Asset.URL)
	assert.True(t, col.lastConfig.ExcludedURLs["https://example.com/cached"])
	assert.Equal(t, 2, col.lastConfig.TargetCount)
}

func TestRunAnalysis_CallerSuppliedAssetsSkipCollection(t *testing.T) {
	col := &stubCollector{}
	fetcher := &stubFetcher{pages: []*fetch.Page{
		{URL: "https://example.com/manual", Title: "Manual", Body: longBody(), HTML: "<html></html>"},
	}}
	o := New(&stubBrandStore{}, stubScenarioStore{}, &stubRunStore{}, &stubAssetStore{}, &stubSummaryStore{},
		map[string]SourceCollector{"brave": col}, fetcher, newTestPipeline(), nil)

	report, err := o.RunAnalysis(context.Background(), "nike", "quarterly", Config{
		Assets: []models.ContentAsset{{URL: "https://example.com/manual"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, col.calls)
	require.Len(t, report.Assets, 1)
	assert.Equal(t, "Manual", report.Assets[0].Asset.Title)
}

func TestRunAnalysis_FailureMarksRunFailedWithPartialReport(t *testing.T) {
	col := &stubCollector{result: collector.Result{Assets: []models.ContentAsset{
		{URL: "https://example.com/a", NormalizedContent: longBody(), RawContent: "<html></html>"},
	}}}
	runs := &stubRunStore{}
	assetsStore := &stubAssetStore{saveErr: errors.New("db unavailable")}

	o := New(&stubBrandStore{}, stubScenarioStore{}, runs, assetsStore, &stubSummaryStore{},
		map[string]SourceCollector{"brave": col}, &stubFetcher{}, newTestPipeline(), nil)

	report, err := o.RunAnalysis(context.Background(), "nike", "quarterly", Config{
		Keywords: []string{"nike"},
		Limit:    1,
		ReuseData: boolPtr(false),
	})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, models.RunStatusFailed, report.Run.Status)
	assert.Contains(t, report.Run.ErrorMessage, "db unavailable")
	assert.Contains(t, runs.transitions, models.RunStatusFailed)
}

func TestBuildSummary_AveragesOnlyNonSkipped(t *testing.T) {
	results := []scoring.AssetResult{
		{AssetID: "a", Scores: models.DimensionScores{Overall: 80}},
		{AssetID: "b", Skipped: true, SkipReason: "thin content"},
		{AssetID: "c", Scores: models.DimensionScores{Overall: 60}},
	}
	summary := buildSummary("run-1", results)
	assert.InDelta(t, 70, summary.OverallScore, 0.01)
}

func boolPtr(b bool) *bool { return &b }
