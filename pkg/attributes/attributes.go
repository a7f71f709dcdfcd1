// Package attributes implements the rule-based trust-signal catalogue
//: a registry of named detectors, each returning at most one
// DetectedAttribute for a piece of normalised content, dispatched by the
// enabled-attribute list from the scoring rubric.
package attributes

import (
	"fmt"
	"log/slog"

	"github.com/allthingstrust/truststack/pkg/models"
)

// DetectorFunc inspects content and returns a detection, or nil when the
// detector doesn't apply (e.g. gated on modality, host type, or absence of
// relevant markers).
type DetectorFunc func(content *models.NormalizedContent) *models.DetectedAttribute

// Detector dispatches enabled attribute ids to their detector functions.
// Constructed once per scoring pipeline; stateless and safe for concurrent
// use across goroutines since detectors never mutate shared state.
type Detector struct {
	registry map[string]DetectorFunc
	enabled  []string
}

// NewDetector builds a Detector restricted to enabledAttributeIDs (the
// rubric's enabled-attributes list). Unknown ids are logged and skipped at
// detect time rather than rejected at construction.
func NewDetector(enabledAttributeIDs []string) *Detector {
	return &Detector{
		registry: builtinRegistry(),
		enabled:  enabledAttributeIDs,
	}
}

// DetectAll runs every enabled detector against content, skipping and
// logging any that panic or are unknown; detectors never abort the
// pipeline.
func (d *Detector) DetectAll(content *models.NormalizedContent) []models.DetectedAttribute {
	var out []models.DetectedAttribute
	for _, id := range d.enabled {
		fn, ok := d.registry[id]
		if !ok {
			slog.Debug("attributes: no detector registered for id, skipping", "attribute_id", id)
			continue
		}
		result := runSafely(id, fn, content)
		if result != nil {
			result.AttributeID = id
			out = append(out, *result)
		}
	}
	return out
}

// runSafely recovers from a detector panic so one bad rule can't take down
// a run; it logs and returns nil (no detection) on recovery.
func runSafely(id string, fn DetectorFunc, content *models.NormalizedContent) (result *models.DetectedAttribute) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("attributes: detector panicked, skipping", "attribute_id", id, "panic", fmt.Sprint(r))
			result = nil
		}
	}()
	return fn(content)
}

// builtinRegistry returns the full catalogue of named detectors.
func builtinRegistry() map[string]DetectorFunc {
	return map[string]DetectorFunc{
		"ai_vs_human_labeling_clarity":              detectAIVsHumanLabelingClarity,
		"author_brand_identity_verified":            detectAuthorBrandIdentityVerified,
		"c2pa_cai_manifest_present":                 detectC2PACAIManifestPresent,
		"canonical_url_matches_declared_source":     detectCanonicalURLMatchesDeclaredSource,
		"domain_age":                                detectDomainAge,
		"whois_privacy":                             detectWhoisPrivacy,
		"verified_platform_account":                 detectVerifiedPlatformAccount,
		"readability_grade_level_fit":                detectReadabilityGradeLevelFit,
		"privacy_policy_link_availability_clarity":  detectPrivacyPolicyLinkAvailabilityClarity,
		"engagement_to_trust_correlation":           detectEngagementToTrustCorrelation,
		"engagement_authenticity_ratio":             detectEngagementToTrustCorrelation,
		"data_source_citations_for_claims":          detectDataSourceCitationsForClaims,
		"claim_to_source_traceability":               detectDataSourceCitationsForClaims,
		"title_present":                             detectTitlePresent,
		"meta_description_quality":                  detectMetaDescriptionQuality,
		"structured_data_presence":                  detectStructuredDataPresence,
		"https_transport_security":                  detectHTTPSTransportSecurity,
		"contact_information_availability":           detectContactInformationAvailability,
		"language_declaration_present":               detectLanguageDeclarationPresent,

		// provenance
		"organization_schema_present":           detectOrganizationSchemaPresent,
		"content_attribution_timestamp_present": detectContentAttributionTimestampPresent,
		"trademark_notice_present":               detectTrademarkNoticePresent,
		"og_url_matches_canonical":               detectOGURLMatchesCanonical,
		"publisher_site_name_declared":           detectPublisherSiteNameDeclared,

		// verification
		"third_party_trust_seal_present":      detectThirdPartyTrustSealPresent,
		"verification_evidence_specificity":   detectVerificationEvidenceSpecificity,
		"business_registration_disclosed":     detectBusinessRegistrationDisclosed,
		"robots_meta_allows_indexing":         detectRobotsMetaAllowsIndexing,
		"no_mixed_content_references":         detectSSLOnlyURL,

		// transparency
		"terms_of_service_link_availability":   detectTermsOfServiceLinkAvailability,
		"advertising_disclosure_present":       detectAdvertisingDisclosurePresent,
		"cookie_consent_disclosure_present":    detectCookieConsentDisclosurePresent,
		"editorial_corrections_policy_present": detectEditorialCorrectionsPolicyPresent,
		"physical_address_disclosed":           detectPhysicalAddressDisclosed,
		"accessibility_statement_present":      detectAccessibilityStatementPresent,

		// coherence
		"heading_structure_quality": detectHeadingStructureQuality,
		"low_boilerplate_ratio":     detectBoilerplateRatio,
		"content_freshness_recency": detectContentFreshnessRecency,
		"keyword_stuffing_absence":  detectKeywordStuffingAbsence,

		// resonance
		"social_share_affordance_present": detectSocialShareButtonPresence,
		"testimonial_review_presence":     detectTestimonialReviewPresence,
		"call_to_action_clarity":          detectCallToActionClarity,
		"community_response_presence":     detectCommunityResponsePresence,
	}
}
