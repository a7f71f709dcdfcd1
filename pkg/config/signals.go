package config

import (
	"github.com/allthingstrust/truststack/pkg/aggregator"
	"github.com/allthingstrust/truststack/pkg/models"
)

// AggregatorSignals converts the YAML rubric into the typed config the
// aggregator consumes. Dimension keys are the lowercase dimension
// names, matching models.Dimension's string values
// directly.
func (c *Config) AggregatorSignals() aggregator.TrustSignalsConfig {
	out := make(aggregator.TrustSignalsConfig, len(c.Rubric.Dimensions))
	for key, dim := range c.Rubric.Dimensions {
		signals := make([]aggregator.SignalDefinition, 0, len(dim.Signals))
		for _, s := range dim.Signals {
			signals = append(signals, aggregator.SignalDefinition{
				ID:       s.ID,
				Weight:   s.Weight,
				Knockout: s.Knockout,
				Core:     s.Core,
			})
		}
		out[models.Dimension(key)] = aggregator.DimensionConfig{
			Signals:     signals,
			MinCoverage: dim.MinCoverage,
			Weight:      dim.Weight,
		}
	}
	return out
}
