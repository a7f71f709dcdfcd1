// Package report renders scored runs into human-readable form: display
// bands for the 0-100 overall score and per-dimension status labels.
package report

import (
	"fmt"

	"github.com/allthingstrust/truststack/pkg/models"
)

// Band is a human-readable classification of an overall trust score.
type Band string

const (
	BandExcellent Band = "Excellent"
	BandStrong    Band = "Strong"
	BandModerate  Band = "Moderate"
	BandWeak      Band = "Weak"
	BandCritical  Band = "Critical"
)

// ClassifyOverall maps an overall score (0..100) to its display band.
func ClassifyOverall(overallScore float64) Band {
	switch {
	case overallScore >= 85:
		return BandExcellent
	case overallScore >= 70:
		return BandStrong
	case overallScore >= 50:
		return BandModerate
	case overallScore >= 30:
		return BandWeak
	default:
		return BandCritical
	}
}

// ToDisplayScore converts a dimension score (0..10 internal scale) to the
// one-decimal display form used throughout the CLI and report.
func ToDisplayScore(internalScore float64) float64 {
	return roundTo1(internalScore)
}

// FormatScore renders a dimension score as "7.5 / 10".
func FormatScore(internalScore float64) string {
	return fmt.Sprintf("%.1f / 10", ToDisplayScore(internalScore))
}

// Status returns a short textual status indicator for a single dimension
// score (0..10 scale).
func Status(internalScore float64) string {
	switch {
	case internalScore >= 8:
		return "Excellent"
	case internalScore >= 6:
		return "Good"
	case internalScore >= 4:
		return "Moderate"
	default:
		return "Poor"
	}
}

// Summary is the rendered, human-facing form of a models.TrustStackSummary.
type Summary struct {
	OverallScore float64
	Band         Band
	Dimensions   map[models.Dimension]DimensionView
}

// DimensionView pairs a dimension's raw score with its display form.
type DimensionView struct {
	Score   float64
	Display string
	Status  string
}

// Render builds the human-readable view of a run's aggregate summary.
func Render(summary *models.TrustStackSummary) Summary {
	out := Summary{
		OverallScore: summary.OverallScore,
		Band:         ClassifyOverall(summary.OverallScore),
		Dimensions:   make(map[models.Dimension]DimensionView, len(models.AllDimensions)),
	}
	for _, dim := range models.AllDimensions {
		var score float64
		switch dim {
		case models.DimensionProvenance:
			score = summary.Provenance
		case models.DimensionVerification:
			score = summary.Verification
		case models.DimensionTransparency:
			score = summary.Transparency
		case models.DimensionCoherence:
			score = summary.Coherence
		case models.DimensionResonance:
			score = summary.Resonance
		}
		out.Dimensions[dim] = DimensionView{
			Score:   score,
			Display: FormatScore(score),
			Status:  Status(score),
		}
	}
	return out
}

func roundTo1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
