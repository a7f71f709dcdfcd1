package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTrustYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesBuiltinDefaults(t *testing.T) {
	path := writeTrustYAML(t, `
brands:
  acme:
    name: Acme Corp
    domains: [acme.com]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Search.BraveMaxPerRequest)
	assert.NotEmpty(t, cfg.Rubric.EnabledAttributes, "builtin rubric should be used when trust.yaml omits one")
	assert.Contains(t, cfg.Rubric.Dimensions, "provenance")
	assert.Equal(t, "Acme Corp", cfg.Brands["acme"].Name)
}

func TestLoad_UserRubricReplacesBuiltinWholesale(t *testing.T) {
	path := writeTrustYAML(t, `
rubric:
  enabled_attributes: [title_present]
  dimensions:
    transparency:
      weight: 1.0
      signals:
        - id: title_present
          weight: 1.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"title_present"}, cfg.Rubric.EnabledAttributes)
	assert.Len(t, cfg.Rubric.Dimensions, 1, "user rubric must not be merged signal-by-signal with the builtin")
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TRUST_DOMAIN", "widgets.example.com")
	path := writeTrustYAML(t, `
brands:
  widgets:
    name: Widgets
    domains: ["{{.TRUST_DOMAIN}}"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets.example.com"}, cfg.Brands["widgets"].Domains)
}

func TestLoad_SecretsComeFromEnvNotYAML(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "bk-secret")
	path := writeTrustYAML(t, `
rubric:
  enabled_attributes: [title_present]
  dimensions:
    transparency: {weight: 1.0, signals: [{id: title_present, weight: 1.0}]}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bk-secret", cfg.Search.BraveAPIKey)
}

func TestLoad_RejectsMismatchedRatios(t *testing.T) {
	path := writeTrustYAML(t, `
brands:
  acme:
    name: Acme
    domains: [acme.com]
    brand_owned_ratio: 0.9
    third_party_ratio: 0.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
