// Package config loads trust.yaml once at startup: brands, scenarios, the
// scoring rubric, and the search/fetch/browser/rate-limit/retention/cost
// knobs. The file is read, environment variables expanded, YAML
// unmarshalled, user overrides deep-merged onto built-in defaults with
// dario.cat/mergo, and the result validated with go-playground/validator.
package config

import (
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads path, expands {{.VAR}} placeholders, merges onto the built-in
// defaults, overlays secret environment variables that must never live in a
// committed YAML file, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := ExpandEnv(raw)

	var user Config
	if err := yaml.Unmarshal(expanded, &user); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
	}

	cfg := &Config{}
	cfg.applyDefaults()
	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}
	// Rubric is a cohesive unit: a user-supplied rubric replaces the
	// built-in wholesale rather than merging signal-by-signal.
	if len(user.Rubric.EnabledAttributes) > 0 || len(user.Rubric.Dimensions) > 0 {
		cfg.Rubric = user.Rubric
	}

	applyEnvSecrets(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return cfg, nil
}

// applyEnvSecrets overlays the environment variables
// that must never be checked into trust.yaml (the API keys), the two
// boolean toggles that only make sense as deployment knobs, and the fetch
// debug-dir, user-agent and parallel-worker overrides.
func applyEnvSecrets(cfg *Config) {
	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		cfg.Search.BraveAPIKey = v
	}
	if v := os.Getenv("SERPER_API_KEY"); v != "" {
		cfg.Search.SerperAPIKey = v
	}
	if v := os.Getenv("SCORING_API_KEY"); v != "" {
		cfg.Scoring.APIKey = v
	}
	if v := os.Getenv("AR_USE_PLAYWRIGHT"); v != "" {
		cfg.Fetch.PreferBrowserGlobal = isTruthy(v)
	}
	if v := os.Getenv("HEADLESS_MODE"); v != "" {
		cfg.Browser.Headless = isTruthy(v)
	} else {
		cfg.Browser.Headless = true
	}
	if v := os.Getenv("AR_FETCH_DEBUG_DIR"); v != "" {
		cfg.Fetch.DebugDir = v
	}
	if v := os.Getenv("AR_USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
	if v := os.Getenv("AR_PARALLEL_FETCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Fetch.ParallelWorkers = n
		}
	}
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Validate runs struct-tag validation plus the cross-field checks the
// validator tags alone can't express (e.g. ratios summing to 1.0).
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	for slug, b := range cfg.Brands {
		if b.BrandOwnedRatio == 0 && b.ThirdPartyRatio == 0 {
			continue // both default to the collector's own 0.5/0.5 split
		}
		sum := b.BrandOwnedRatio + b.ThirdPartyRatio
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("brand %q: brand_owned_ratio + third_party_ratio must sum to 1.0, got %.3f", slug, sum)
		}
	}
	return nil
}
