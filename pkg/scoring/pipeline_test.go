package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allthingstrust/truststack/pkg/aggregator"
	"github.com/allthingstrust/truststack/pkg/attributes"
	"github.com/allthingstrust/truststack/pkg/models"
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

type stubService struct {
	scores []*ContentScores
	err    error
}

func (s *stubService) ScoreBatch(ctx context.Context, items []*models.NormalizedContent) ([]*ContentScores, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func uniformScores(v float64) *ContentScores {
	return &ContentScores{Provenance: v, Verification: v, Transparency: v, Coherence: v, Resonance: v, Model: "gpt-4o-mini", PromptTokens: 100, CompletionTokens: 50}
}

func TestShouldSkipContent_ThinBody(t *testing.T) {
	c := &models.NormalizedContent{Body: "hi"}
	skip, reason := shouldSkipContent(c)
	assert.True(t, skip)
	assert.Contains(t, reason, "short")
}

func TestShouldSkipContent_FunctionalThin(t *testing.T) {
	c := &models.NormalizedContent{URL: "https://example.com/login", Body: "please sign in to continue shopping today"}
	skip, _ := shouldSkipContent(c)
	assert.True(t, skip)
}

func TestShouldSkipContent_ErrorPage(t *testing.T) {
	c := &models.NormalizedContent{Title: "404 Not Found", Body: "the page you are looking for could not be located on this server"}
	skip, reason := shouldSkipContent(c)
	assert.True(t, skip)
	assert.Contains(t, reason, "error page")
}

func TestShouldSkipContent_Passes(t *testing.T) {
	c := &models.NormalizedContent{URL: "https://example.com/article", Body: "a perfectly ordinary article body with plenty of words in it to pass the pre-filter stage cleanly"}
	skip, _ := shouldSkipContent(c)
	assert.False(t, skip)
}

func TestTriage_UnderThreshold(t *testing.T) {
	c := &models.NormalizedContent{Body: "short but not empty content here"}
	skip, def, _ := triage(c)
	assert.True(t, skip)
	assert.Equal(t, 0.5, def)
}

func TestTriage_Passes(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "word word word word word "
	}
	c := &models.NormalizedContent{Body: long}
	skip, _, _ := triage(c)
	assert.False(t, skip)
}

func TestHeuristicFallback(t *testing.T) {
	assert.Equal(t, 0.5, heuristicFallback(""))
	assert.InDelta(t, 0.3, heuristicFallback("x"), 0.01)
	assert.Equal(t, 1.0, heuristicFallback(string(make([]byte, 5000))))
}

func TestPipelineRun_SkipsThinContent(t *testing.T) {
	detector := attributes.NewDetector(nil)
	p := NewPipeline(detector, &stubService{}, testSignals(), nil)

	contents := []*models.NormalizedContent{
		{URL: "https://example.com/a", Body: "x"},
	}
	results, err := p.Run(context.Background(), []string{"asset-1"}, contents)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
}

func TestPipelineRun_TriageUsesDefaultScore(t *testing.T) {
	detector := attributes.NewDetector(nil)
	p := NewPipeline(detector, &stubService{}, testSignals(), nil)

	contents := []*models.NormalizedContent{
		{URL: "https://example.com/a", Body: "a short body of text that clears pre-filter but not triage ok"},
	}
	results, err := p.Run(context.Background(), []string{"asset-1"}, contents)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.InDelta(t, 5.0, results[0].Scores.Provenance, 0.01)
}

func TestPipelineRun_ScoresViaService(t *testing.T) {
	detector := attributes.NewDetector(nil)
	long := ""
	for i := 0; i < 40; i++ {
		long += "substantial article content with many distinct words repeated "
	}
	svc := &stubService{scores: []*ContentScores{uniformScores(0.8)}}
	cost := NewCostTracker(nil, QuotaThresholds{})
	p := NewPipeline(detector, svc, testSignals(), cost)

	contents := []*models.NormalizedContent{
		{URL: "https://example.com/a", Body: long},
	}
	results, err := p.Run(context.Background(), []string{"asset-1"}, contents)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.InDelta(t, 8.0, results[0].Scores.Provenance, 0.01)
	assert.NotEmpty(t, contents[0].Language)

	summary := cost.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(1), summary[0].Calls)
}

func TestPipelineRun_ServiceErrorFallsBackToHeuristic(t *testing.T) {
	detector := attributes.NewDetector(nil)
	long := ""
	for i := 0; i < 40; i++ {
		long += "substantial article content with many distinct words repeated "
	}
	svc := &stubService{err: errors.New("upstream unavailable")}
	p := NewPipeline(detector, svc, testSignals(), nil)

	contents := []*models.NormalizedContent{
		{URL: "https://example.com/a", Body: long},
	}
	results, err := p.Run(context.Background(), []string{"asset-1"}, contents)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.Greater(t, results[0].Scores.Provenance, 0.0)
}

type stubPersister struct {
	saved map[string]models.DimensionScores
}

func (s *stubPersister) PersistAssetScore(ctx context.Context, assetID string, scores models.DimensionScores) error {
	if s.saved == nil {
		s.saved = map[string]models.DimensionScores{}
	}
	s.saved[assetID] = scores
	return nil
}

func TestPipelineRun_PersistsSurvivingAssets(t *testing.T) {
	detector := attributes.NewDetector(nil)
	persister := &stubPersister{}
	p := NewPipeline(detector, &stubService{}, testSignals(), nil)
	p.Persist = persister

	contents := []*models.NormalizedContent{
		{URL: "https://example.com/a", Body: "x"},
		{URL: "https://example.com/b", Body: "a short body of text that clears pre-filter but not triage threshold here"},
	}
	_, err := p.Run(context.Background(), []string{"skip-me", "keep-me"}, contents)
	require.NoError(t, err)
	assert.NotContains(t, persister.saved, "skip-me")
	assert.Contains(t, persister.saved, "keep-me")
}
