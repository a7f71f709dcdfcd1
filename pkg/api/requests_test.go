package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRunRequest_ToOrchestratorConfig(t *testing.T) {
	reuse := false
	req := createRunRequest{
		BrandSlug:           "acme",
		ScenarioSlug:        "launch",
		BrandName:           "Acme Corp",
		Keywords:            []string{"acme reviews"},
		Limit:               5,
		ReuseData:           &reuse,
		MaxAssetAgeHours:    12,
		VisualAnalysisEnabled: true,
		ScenarioConfig: scenarioConfigRequest{
			SearchProvider: "serper",
			BrandDomains:   []string{"acme.com"},
		},
	}

	cfg := req.toOrchestratorConfig()

	assert.Equal(t, "Acme Corp", cfg.BrandName)
	assert.Equal(t, []string{"acme reviews"}, cfg.Keywords)
	assert.Equal(t, 5, cfg.Limit)
	assert.NotNil(t, cfg.ReuseData)
	assert.False(t, *cfg.ReuseData)
	assert.Equal(t, 12, cfg.MaxAssetAgeHours)
	assert.True(t, cfg.VisualAnalysisEnabled)
	assert.Equal(t, "serper", cfg.ScenarioConfig.SearchProvider)
	assert.Equal(t, []string{"acme.com"}, cfg.ScenarioConfig.BrandDomains)
}
