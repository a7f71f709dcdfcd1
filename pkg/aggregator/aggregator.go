// Package aggregator implements the per-dimension weighted aggregation
// with knockout/core-deficit caps and coverage penalty.
package aggregator

import (
	"github.com/allthingstrust/truststack/pkg/models"
)

// SignalDefinition describes one named signal within a dimension's rubric.
type SignalDefinition struct {
	ID       string
	Weight   float64
	Knockout bool
	Core     bool
}

// DimensionConfig is the per-dimension rubric: its named signals and the
// minimum number of present signals before a coverage penalty applies.
type DimensionConfig struct {
	Signals     []SignalDefinition
	MinCoverage int
	Weight      float64 // this dimension's share of the overall 0-100 score
}

// TrustSignalsConfig carries one DimensionConfig per dimension.
type TrustSignalsConfig map[models.Dimension]DimensionConfig

// knockoutCap and coreDeficitCap are the fixed dimension ceilings.
const (
	knockoutCap   = 4.0
	coreDeficitCap = 6.0
	knockoutFloor = 4.0
	coreFloor     = 3.0
)

// AggregateDimension computes one dimension: confidence-weighted mean,
// knockout/core caps, then the coverage penalty.
func AggregateDimension(signals []models.SignalScore, cfg DimensionConfig) float64 {
	byID := make(map[string]models.SignalScore, len(signals))
	for _, s := range signals {
		byID[s.ID] = s
	}

	var weightedSum, weightSum float64
	present := 0
	knockoutTriggered := false
	coreDeficitTriggered := false

	for _, def := range cfg.Signals {
		sig, ok := byID[def.ID]
		if !ok {
			continue
		}
		present++
		effectiveWeight := def.Weight
		weightedSum += sig.Value * effectiveWeight * clampConfidence(sig.Confidence)
		weightSum += effectiveWeight * clampConfidence(sig.Confidence)

		if def.Knockout && sig.Value < knockoutFloor {
			knockoutTriggered = true
		}
		if def.Core && sig.Value < coreFloor {
			coreDeficitTriggered = true
		}
	}

	if weightSum == 0 {
		return 0
	}
	score := weightedSum / weightSum

	if knockoutTriggered && score > knockoutCap {
		score = knockoutCap
	}
	if coreDeficitTriggered && score > coreDeficitCap {
		score = coreDeficitCap
	}

	if cfg.MinCoverage > 0 && present < cfg.MinCoverage {
		coverageRatio := float64(present) / float64(cfg.MinCoverage)
		score *= coverageRatio
	}

	return clampScore(score, 0, 10)
}

// Aggregate computes all five dimension scores plus the overall weighted
// 0-100 trust score.
func Aggregate(signals []models.SignalScore, cfg TrustSignalsConfig) models.DimensionScores {
	byDimension := map[models.Dimension][]models.SignalScore{}
	for _, s := range signals {
		byDimension[s.Dimension] = append(byDimension[s.Dimension], s)
	}

	var out models.DimensionScores
	var weightedTotal, weightTotal float64
	for _, dim := range models.AllDimensions {
		dimCfg := cfg[dim]
		score := AggregateDimension(byDimension[dim], dimCfg)
		out.SetDimension(dim, score)
		weightedTotal += score * dimCfg.Weight
		weightTotal += dimCfg.Weight
	}

	if weightTotal > 0 {
		out.Overall = (weightedTotal / weightTotal) * 10 // 0-10 mean scaled to 0-100
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c <= 0 {
		return 1 // absent confidence defaults to full weight, matching signals with no stated uncertainty
	}
	return clampScore(c, 0, 1)
}

func clampScore(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
