package config

import "time"

// builtinRubric is the built-in trust-signals rubric: every ship-with
// detector (pkg/attributes' registry) enabled, weighted per dimension, with
// knockout/core flags on the load-bearing signals. User-supplied trust.yaml
// `rubric:` overrides this wholesale; rubrics are not merged field-by-field
// since a scoring rubric is a cohesive unit, unlike the scalar knobs below.
var builtinRubric = RubricConfig{
	EnabledAttributes: []string{
		"author_brand_identity_verified",
		"c2pa_cai_manifest_present",
		"canonical_url_matches_declared_source",
		"domain_age",
		"whois_privacy",
		"structured_data_presence",
		"organization_schema_present",
		"content_attribution_timestamp_present",
		"trademark_notice_present",
		"og_url_matches_canonical",
		"publisher_site_name_declared",
		"verified_platform_account",
		"https_transport_security",
		"third_party_trust_seal_present",
		"verification_evidence_specificity",
		"business_registration_disclosed",
		"robots_meta_allows_indexing",
		"no_mixed_content_references",
		"ai_vs_human_labeling_clarity",
		"privacy_policy_link_availability_clarity",
		"title_present",
		"meta_description_quality",
		"contact_information_availability",
		"terms_of_service_link_availability",
		"advertising_disclosure_present",
		"cookie_consent_disclosure_present",
		"editorial_corrections_policy_present",
		"physical_address_disclosed",
		"accessibility_statement_present",
		"readability_grade_level_fit",
		"data_source_citations_for_claims",
		"claim_to_source_traceability",
		"language_declaration_present",
		"heading_structure_quality",
		"low_boilerplate_ratio",
		"content_freshness_recency",
		"keyword_stuffing_absence",
		"engagement_to_trust_correlation",
		"engagement_authenticity_ratio",
		"social_share_affordance_present",
		"testimonial_review_presence",
		"call_to_action_clarity",
		"community_response_presence",
	},
	Dimensions: map[string]DimensionEntry{
		"provenance": {
			Weight:      0.25,
			MinCoverage: 3,
			Signals: []SignalEntry{
				{ID: "llm_dimension_score", Weight: 0.35},
				{ID: "author_brand_identity_verified", Weight: 0.18},
				{ID: "c2pa_cai_manifest_present", Weight: 0.1},
				{ID: "canonical_url_matches_declared_source", Weight: 0.14, Core: true},
				{ID: "domain_age", Weight: 0.14},
				{ID: "whois_privacy", Weight: 0.07},
				{ID: "structured_data_presence", Weight: 0.07},
				{ID: "organization_schema_present", Weight: 0.07},
				{ID: "content_attribution_timestamp_present", Weight: 0.05},
				{ID: "trademark_notice_present", Weight: 0.05},
				{ID: "og_url_matches_canonical", Weight: 0.07},
				{ID: "publisher_site_name_declared", Weight: 0.06},
			},
		},
		"verification": {
			Weight:      0.2,
			MinCoverage: 1,
			Signals: []SignalEntry{
				{ID: "llm_dimension_score", Weight: 0.35},
				{ID: "verified_platform_account", Weight: 0.35, Knockout: true},
				{ID: "https_transport_security", Weight: 0.25},
				{ID: "third_party_trust_seal_present", Weight: 0.1},
				{ID: "verification_evidence_specificity", Weight: 0.1},
				{ID: "business_registration_disclosed", Weight: 0.1},
				{ID: "robots_meta_allows_indexing", Weight: 0.05},
				{ID: "no_mixed_content_references", Weight: 0.05},
			},
		},
		"transparency": {
			Weight:      0.25,
			MinCoverage: 3,
			Signals: []SignalEntry{
				{ID: "llm_dimension_score", Weight: 0.35},
				{ID: "ai_vs_human_labeling_clarity", Weight: 0.18, Knockout: true},
				{ID: "privacy_policy_link_availability_clarity", Weight: 0.14},
				{ID: "title_present", Weight: 0.08},
				{ID: "meta_description_quality", Weight: 0.08},
				{ID: "contact_information_availability", Weight: 0.1},
				{ID: "terms_of_service_link_availability", Weight: 0.1},
				{ID: "advertising_disclosure_present", Weight: 0.08},
				{ID: "cookie_consent_disclosure_present", Weight: 0.08},
				{ID: "editorial_corrections_policy_present", Weight: 0.06},
				{ID: "physical_address_disclosed", Weight: 0.06},
				{ID: "accessibility_statement_present", Weight: 0.04},
			},
		},
		"coherence": {
			Weight:      0.15,
			MinCoverage: 2,
			Signals: []SignalEntry{
				{ID: "llm_dimension_score", Weight: 0.35},
				{ID: "readability_grade_level_fit", Weight: 0.25},
				{ID: "data_source_citations_for_claims", Weight: 0.2, Core: true},
				{ID: "claim_to_source_traceability", Weight: 0.1},
				{ID: "language_declaration_present", Weight: 0.1},
				{ID: "heading_structure_quality", Weight: 0.12},
				{ID: "low_boilerplate_ratio", Weight: 0.1},
				{ID: "content_freshness_recency", Weight: 0.08},
				{ID: "keyword_stuffing_absence", Weight: 0.05},
			},
		},
		"resonance": {
			Weight:      0.15,
			MinCoverage: 1,
			Signals: []SignalEntry{
				{ID: "llm_dimension_score", Weight: 0.35},
				{ID: "engagement_to_trust_correlation", Weight: 0.35},
				{ID: "engagement_authenticity_ratio", Weight: 0.25},
				{ID: "social_share_affordance_present", Weight: 0.1},
				{ID: "testimonial_review_presence", Weight: 0.15},
				{ID: "call_to_action_clarity", Weight: 0.05},
				{ID: "community_response_presence", Weight: 0.1},
			},
		},
	},
}

// applyDefaults fills every zero-valued scalar knob with its default
// before user overrides are merged on top.
func (c *Config) applyDefaults() {
	if len(c.Rubric.EnabledAttributes) == 0 && len(c.Rubric.Dimensions) == 0 {
		c.Rubric = builtinRubric
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Search.BraveMaxPerRequest <= 0 {
		c.Search.BraveMaxPerRequest = 20
	}
	if c.Search.BraveTimeout <= 0 {
		c.Search.BraveTimeout = 10 * time.Second
	}
	if c.Search.BraveRequestInterval <= 0 {
		c.Search.BraveRequestInterval = time.Second
	}
	if c.Search.SerperTimeout <= 0 {
		c.Search.SerperTimeout = 30 * time.Second
	}
	if c.Search.SerperRequestInterval <= 0 {
		c.Search.SerperRequestInterval = time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (compatible; TrustStackBot/1.0; +https://truststack.invalid/bot)"
	}
	if c.Fetch.BrowserTimeout <= 0 {
		c.Fetch.BrowserTimeout = 20 * time.Second
	}
	if c.Fetch.ParallelWorkers <= 0 {
		c.Fetch.ParallelWorkers = 5
	}
	if c.RateLimit.DefaultInterval <= 0 {
		c.RateLimit.DefaultInterval = 2 * time.Second
	}
	if c.RateLimit.SearchInterval <= 0 {
		c.RateLimit.SearchInterval = time.Second
	}
	if c.Retention.MaxAssetAgeHours <= 0 {
		c.Retention.MaxAssetAgeHours = 24
	}
	if c.Retention.PruneAfterDays <= 0 {
		c.Retention.PruneAfterDays = 90
	}
	if c.Cost.MaxUSD <= 0 {
		c.Cost.MaxUSD = 5.0
	}
	if c.Scoring.Timeout <= 0 {
		c.Scoring.Timeout = 30 * time.Second
	}
}
