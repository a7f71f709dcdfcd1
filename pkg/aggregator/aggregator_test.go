package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allthingstrust/truststack/pkg/models"
)

func dimConfig(minCoverage int, signals ...SignalDefinition) DimensionConfig {
	return DimensionConfig{Signals: signals, MinCoverage: minCoverage, Weight: 1}
}

func TestAggregateDimension_WeightedMean(t *testing.T) {
	signals := []models.SignalScore{
		{ID: "a", Value: 8, Confidence: 1},
		{ID: "b", Value: 4, Confidence: 1},
	}
	cfg := dimConfig(0, SignalDefinition{ID: "a", Weight: 1}, SignalDefinition{ID: "b", Weight: 1})
	score := AggregateDimension(signals, cfg)
	assert.InDelta(t, 6.0, score, 0.001)
}

func TestAggregateDimension_KnockoutCapsAt4(t *testing.T) {
	signals := []models.SignalScore{
		{ID: "a", Value: 10, Confidence: 1},
		{ID: "knockout", Value: 2, Confidence: 1},
	}
	cfg := dimConfig(0,
		SignalDefinition{ID: "a", Weight: 1},
		SignalDefinition{ID: "knockout", Weight: 1, Knockout: true},
	)
	score := AggregateDimension(signals, cfg)
	assert.LessOrEqual(t, score, 4.0)
}

func TestAggregateDimension_CoreDeficitCapsAt6(t *testing.T) {
	signals := []models.SignalScore{
		{ID: "a", Value: 10, Confidence: 1},
		{ID: "core", Value: 1, Confidence: 1},
	}
	cfg := dimConfig(0,
		SignalDefinition{ID: "a", Weight: 1},
		SignalDefinition{ID: "core", Weight: 1, Core: true},
	)
	score := AggregateDimension(signals, cfg)
	assert.LessOrEqual(t, score, 6.0)
}

func TestAggregateDimension_CoveragePenalty(t *testing.T) {
	signals := []models.SignalScore{
		{ID: "a", Value: 10, Confidence: 1},
	}
	cfg := dimConfig(4, SignalDefinition{ID: "a", Weight: 1}, SignalDefinition{ID: "b", Weight: 1}, SignalDefinition{ID: "c", Weight: 1}, SignalDefinition{ID: "d", Weight: 1})
	score := AggregateDimension(signals, cfg)
	// present=1, minCoverage=4 -> ratio 0.25 applied to the raw score of 10.
	assert.InDelta(t, 2.5, score, 0.001)
}

func TestAggregateDimension_NoSignalsReturnsZero(t *testing.T) {
	cfg := dimConfig(0, SignalDefinition{ID: "a", Weight: 1})
	assert.Equal(t, 0.0, AggregateDimension(nil, cfg))
}

func TestAggregate_OverallIsWeightedMeanScaledTo100(t *testing.T) {
	cfg := TrustSignalsConfig{
		models.DimensionProvenance:   dimConfig(0, SignalDefinition{ID: "p", Weight: 1}),
		models.DimensionVerification: dimConfig(0, SignalDefinition{ID: "v", Weight: 1}),
		models.DimensionTransparency: dimConfig(0, SignalDefinition{ID: "t", Weight: 1}),
		models.DimensionCoherence:    dimConfig(0, SignalDefinition{ID: "c", Weight: 1}),
		models.DimensionResonance:    dimConfig(0, SignalDefinition{ID: "r", Weight: 1}),
	}
	for dim := range cfg {
		if dc, ok := cfg[dim]; ok {
			dc.Weight = 1
			cfg[dim] = dc
		}
	}
	signals := []models.SignalScore{
		{ID: "p", Dimension: models.DimensionProvenance, Value: 10, Confidence: 1},
		{ID: "v", Dimension: models.DimensionVerification, Value: 10, Confidence: 1},
		{ID: "t", Dimension: models.DimensionTransparency, Value: 10, Confidence: 1},
		{ID: "c", Dimension: models.DimensionCoherence, Value: 10, Confidence: 1},
		{ID: "r", Dimension: models.DimensionResonance, Value: 10, Confidence: 1},
	}
	result := Aggregate(signals, cfg)
	assert.InDelta(t, 100.0, result.Overall, 0.001)
}
