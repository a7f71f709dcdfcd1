package scoring

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/allthingstrust/truststack/pkg/aggregator"
	"github.com/allthingstrust/truststack/pkg/attributes"
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/report"
)

// functionalPathMarkers identify pages whose short bodies are expected and
// should not be scored as thin content.
var functionalPathMarkers = []string{"login", "cart", "signup", "checkout", "/account", "/register"}

var errorPageTitleMarkers = []string{"access denied", "403", "404", "forbidden", "not found", "error"}

// Persister is the narrow interface the pipeline needs to write back
// per-asset scores; the store package implements it.
type Persister interface {
	PersistAssetScore(ctx context.Context, assetID string, scores models.DimensionScores) error
}

// Pipeline composes the scoring stages into Run.
type Pipeline struct {
	Detector *attributes.Detector
	Service  Service // nil scores every asset via the heuristic fallback
	Signals  aggregator.TrustSignalsConfig
	Cost     *CostTracker
	Persist  Persister // nil disables the persist stage; caller persists separately
}

// NewPipeline constructs a Pipeline.
func NewPipeline(detector *attributes.Detector, service Service, signals aggregator.TrustSignalsConfig, cost *CostTracker) *Pipeline {
	return &Pipeline{Detector: detector, Service: service, Signals: signals, Cost: cost}
}

// AssetResult is Run's per-asset outcome.
type AssetResult struct {
	AssetID    string
	Content    *models.NormalizedContent
	Skipped    bool
	SkipReason string
	Scores     models.DimensionScores
}

// Run executes the full stage sequence over a batch of normalised
// content, one AssetResult per input item in the same order.
func (p *Pipeline) Run(ctx context.Context, assetIDs []string, contents []*models.NormalizedContent) ([]AssetResult, error) {
	results := make([]AssetResult, len(contents))
	var scoreable []*models.NormalizedContent
	scoreableIdx := make([]int, 0, len(contents))

	for i, c := range contents {
		results[i] = AssetResult{AssetID: assetIDs[i], Content: c}

		if skip, reason := shouldSkipContent(c); skip {
			results[i].Skipped = true
			results[i].SkipReason = reason
			continue
		}

		c.Language = DetectLanguage(c.Body)

		if skip, defaultScore, reason := triage(c); skip {
			scores := p.aggregateWithHeuristic(c, defaultScore)
			results[i].Scores = scores
			results[i].SkipReason = reason
			continue
		}

		scoreable = append(scoreable, c)
		scoreableIdx = append(scoreableIdx, i)
	}

	if len(scoreable) > 0 {
		var contentScores []*ContentScores
		if p.Service == nil {
			contentScores = make([]*ContentScores, len(scoreable))
		} else {
			var err error
			contentScores, err = p.Service.ScoreBatch(ctx, scoreable)
			if err != nil {
				slog.Warn("scoring: service batch failed, applying heuristic fallback to entire batch", "error", err)
				contentScores = make([]*ContentScores, len(scoreable))
			}
		}
		for j, c := range scoreable {
			i := scoreableIdx[j]
			var cs *ContentScores
			if j < len(contentScores) {
				cs = contentScores[j]
			}
			if cs == nil {
				results[i].Scores = p.aggregateWithHeuristic(c, heuristicFallback(c.Body))
				continue
			}
			if p.Cost != nil && cs.Model != "" {
				p.Cost.RecordUsage(cs.Model, cs.PromptTokens, cs.CompletionTokens)
			}
			results[i].Scores = p.aggregateWithScores(c, cs)
		}
	}

	if p.Persist != nil {
		for _, r := range results {
			if r.Skipped {
				continue
			}
			if err := p.Persist.PersistAssetScore(ctx, r.AssetID, r.Scores); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// shouldSkipContent is the pre-filter stage.
func shouldSkipContent(c *models.NormalizedContent) (bool, string) {
	body := strings.TrimSpace(c.Body)
	if len(body) < 30 && c.ScreenshotRef == "" {
		return true, "body too short to score"
	}
	if isFunctionalPage(c.URL) && len(body) < 300 {
		return true, "functional page with thin body"
	}
	if looksLikeErrorPage(c.Title) {
		return true, "detected error page"
	}
	return false, ""
}

// triage assigns a default score to content too thin to send upstream.
func triage(c *models.NormalizedContent) (skip bool, defaultScore float64, reason string) {
	body := strings.TrimSpace(c.Body)
	if len(body) < 100 {
		return true, 0.5, "body under triage threshold, using default score"
	}
	if isFunctionalPage(c.URL) && len(body) < 300 {
		return true, 0.5, "functional page under triage threshold"
	}
	return false, 0, ""
}

func isFunctionalPage(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range functionalPathMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func looksLikeErrorPage(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range errorPageTitleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// heuristicFallback estimates a score for items the
// scoring service filtered: 0.5 for empty content, else a length-scaled
// estimate capped at 1.0.
func heuristicFallback(body string) float64 {
	if strings.TrimSpace(body) == "" {
		return 0.5
	}
	return math.Min(1, 0.3+float64(len(body))/2000)
}

func (p *Pipeline) aggregateWithHeuristic(c *models.NormalizedContent, uniformScore float64) models.DimensionScores {
	cs := &ContentScores{
		Provenance:   uniformScore,
		Verification: uniformScore,
		Transparency: uniformScore,
		Coherence:    uniformScore,
		Resonance:    uniformScore,
		Rationale:    map[string]any{"fallback": "heuristic_default"},
	}
	return p.aggregateWithScores(c, cs)
}

func (p *Pipeline) aggregateWithScores(c *models.NormalizedContent, cs *ContentScores) models.DimensionScores {
	detected := p.Detector.DetectAll(c)
	signals := buildSignalScores(cs, detected)
	scores := aggregator.Aggregate(signals, p.Signals)
	scores.Classification = string(report.ClassifyOverall(scores.Overall))

	rationale := map[string]any{}
	for k, v := range cs.Rationale {
		rationale[k] = v
	}
	rationale["detected_attributes"] = detected
	if cs.VisualAnalysis != nil {
		rationale["visual_analysis"] = cs.VisualAnalysis
	}
	scores.Rationale = rationale
	return scores
}

// buildSignalScores converts one ContentScores plus the detector's findings
// into the flat SignalScore list the aggregator consumes.
func buildSignalScores(cs *ContentScores, detected []models.DetectedAttribute) []models.SignalScore {
	out := make([]models.SignalScore, 0, len(models.AllDimensions)+len(detected))
	for _, dim := range models.AllDimensions {
		out = append(out, models.SignalScore{
			ID:         "llm_dimension_score",
			Label:      "Scoring service dimension estimate",
			Dimension:  dim,
			Value:      dimensionValue(cs, dim) * 10,
			Weight:     1,
			Confidence: 1,
		})
	}
	for _, d := range detected {
		var evidence []string
		if d.Evidence != "" {
			evidence = []string{d.Evidence}
		}
		out = append(out, models.SignalScore{
			ID:         d.AttributeID,
			Label:      d.Label,
			Dimension:  d.Dimension,
			Value:      d.Value,
			Weight:     1,
			Confidence: d.Confidence,
			Evidence:   evidence,
		})
	}
	return out
}

func dimensionValue(cs *ContentScores, dim models.Dimension) float64 {
	switch dim {
	case models.DimensionProvenance:
		return cs.Provenance
	case models.DimensionVerification:
		return cs.Verification
	case models.DimensionTransparency:
		return cs.Transparency
	case models.DimensionCoherence:
		return cs.Coherence
	case models.DimensionResonance:
		return cs.Resonance
	default:
		return 0
	}
}
