package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allthingstrust/truststack/pkg/models"
)

func TestClassifyOverall(t *testing.T) {
	cases := []struct {
		score float64
		want  Band
	}{
		{92, BandExcellent},
		{85, BandExcellent},
		{84.9, BandStrong},
		{70, BandStrong},
		{55, BandModerate},
		{30, BandWeak},
		{29.9, BandCritical},
		{0, BandCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyOverall(c.score), "score=%v", c.score)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "7.5 / 10", FormatScore(7.45))
	assert.Equal(t, "0.0 / 10", FormatScore(0))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "Excellent", Status(9))
	assert.Equal(t, "Good", Status(6.5))
	assert.Equal(t, "Moderate", Status(4))
	assert.Equal(t, "Poor", Status(1))
}

func TestRender(t *testing.T) {
	summary := &models.TrustStackSummary{
		OverallScore: 72,
		Provenance:   8,
		Verification: 6.5,
		Transparency: 7,
		Coherence:    6,
		Resonance:    5.5,
	}
	rendered := Render(summary)
	assert.Equal(t, BandStrong, rendered.Band)
	assert.Len(t, rendered.Dimensions, len(models.AllDimensions))
	assert.Equal(t, "Excellent", rendered.Dimensions[models.DimensionProvenance].Status)
	assert.Equal(t, "6.0 / 10", rendered.Dimensions[models.DimensionCoherence].Display)
}
