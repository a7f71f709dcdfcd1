package attributes

import (
	"regexp"
	"strings"
	"time"

	"github.com/allthingstrust/truststack/pkg/models"
)

// --- provenance ---------------------------------------------------------

// detectOrganizationSchemaPresent looks for a schema.org Organization (or
// Corporation) entry among the collected JSON-LD blocks, independently of
// the author/creator check already performed by
// detectAuthorBrandIdentityVerified.
func detectOrganizationSchemaPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	blocks, _ := c.Metadata["json_ld"].([]map[string]any)
	for _, block := range blocks {
		if schemaTypeIsOrganization(block["@type"]) {
			return present(models.DimensionProvenance, "Organization schema present", 9, 0.7, "schema.org Organization entry found")
		}
	}
	return absent(models.DimensionProvenance, "Organization schema present", 3, 0.55, models.ReasonNotInDOM, "no Organization schema entry found")
}

func schemaTypeIsOrganization(v any) bool {
	switch val := v.(type) {
	case string:
		return val == "Organization" || val == "Corporation" || val == "NewsMediaOrganization"
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && (s == "Organization" || s == "Corporation" || s == "NewsMediaOrganization") {
				return true
			}
		}
	}
	return false
}

// detectContentAttributionTimestampPresent requires a parseable
// published-at timestamp; skipped entirely (nil) when the source never
// carries one, e.g. evergreen marketplace listings.
func detectContentAttributionTimestampPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.PlatformType == "marketplace" {
		return nil
	}
	if c.PublishedAt == nil || strings.TrimSpace(*c.PublishedAt) == "" {
		return absent(models.DimensionProvenance, "Content attribution timestamp present", 3, 0.5, models.ReasonNotInDOM, "no publication timestamp found")
	}
	if _, err := time.Parse(time.RFC3339, *c.PublishedAt); err != nil {
		return partial(models.DimensionProvenance, "Content attribution timestamp present", 5, 0.4, "publication timestamp present but unparsable")
	}
	return present(models.DimensionProvenance, "Content attribution timestamp present", 8, 0.7, "publication timestamp present and well-formed")
}

var trademarkMarkers = regexp.MustCompile(`[\x{2122}\x{00AE}]|all rights reserved`)

// detectTrademarkNoticePresent scans body text for a trademark/registration
// mark or an "all rights reserved" notice.
func detectTrademarkNoticePresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if trademarkMarkers.MatchString(strings.ToLower(c.Body)) {
		return present(models.DimensionProvenance, "Trademark notice present", 7, 0.6, "trademark/rights notice found in body")
	}
	if c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionProvenance, "Trademark notice present", 4, 0.4, models.ReasonNotInDOM, "no trademark/rights notice found")
	}
	return nil
}

// detectOGURLMatchesCanonical cross-checks the og:url meta tag against the
// canonical link, an independent provenance signal from
// detectCanonicalURLMatchesDeclaredSource (which compares the declared URL,
// not og:url, to canonical).
func detectOGURLMatchesCanonical(c *models.NormalizedContent) *models.DetectedAttribute {
	ogURL := metaString(c, "og_url")
	canonical := metaString(c, "canonical_url")
	if ogURL == "" || canonical == "" {
		return nil
	}
	if stripWWWAttr(hostOfURL(ogURL)) == stripWWWAttr(hostOfURL(canonical)) {
		return present(models.DimensionProvenance, "Open Graph URL matches canonical", 8, 0.6, "og:url host matches canonical host")
	}
	return absent(models.DimensionProvenance, "Open Graph URL matches canonical", 2, 0.55, models.ReasonNotInDOM, "og:url host diverges from canonical host")
}

// detectPublisherSiteNameDeclared checks for an og:site_name declaration,
// a lightweight publisher-identity signal independent of schema/byline
// evidence.
func detectPublisherSiteNameDeclared(c *models.NormalizedContent) *models.DetectedAttribute {
	if strings.TrimSpace(metaString(c, "og_site_name")) != "" {
		return present(models.DimensionProvenance, "Publisher site name declared", 7, 0.55, "og:site_name present")
	}
	return nil
}

// --- verification --------------------------------------------------------

var trustSealMarkers = regexp.MustCompile(`(?i)better business bureau|bbb accredited|trustpilot|norton secured|mcafee secure|verified by visa|pci compliant`)

// detectThirdPartyTrustSealPresent scans body text for a recognised
// third-party trust-seal phrase.
func detectThirdPartyTrustSealPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if trustSealMarkers.MatchString(c.Body) {
		return present(models.DimensionVerification, "Third-party trust seal present", 8, 0.65, "recognised trust-seal phrase found")
	}
	return nil
}

// detectVerificationEvidenceSpecificity rewards a verification badge whose
// captured evidence string is specific (non-empty) over a bare boolean
// flag, distinct from detectVerifiedPlatformAccount's presence check.
func detectVerificationEvidenceSpecificity(c *models.NormalizedContent) *models.DetectedAttribute {
	if !metaBool(c, "verification_badge_verified") {
		return nil
	}
	evidence := strings.TrimSpace(metaString(c, "verification_badge_evidence"))
	if evidence == "" {
		return partial(models.DimensionVerification, "Verification evidence specificity", 5, 0.4, "verified but no supporting evidence captured")
	}
	return present(models.DimensionVerification, "Verification evidence specificity", 9, 0.75, "verified with evidence: "+evidence)
}

var businessRegistrationMarkers = regexp.MustCompile(`(?i)company (number|no\.?)\s*[:#]?\s*\w+|registered in england|vat (no\.?|number)\s*[:#]?\s*\w+|ein\s*[:#]?\s*\d`)

// detectBusinessRegistrationDisclosed looks for a company-registration or
// tax-identifier disclosure in body text.
func detectBusinessRegistrationDisclosed(c *models.NormalizedContent) *models.DetectedAttribute {
	if businessRegistrationMarkers.MatchString(c.Body) {
		return present(models.DimensionVerification, "Business registration disclosed", 8, 0.65, "company registration/tax identifier found")
	}
	if c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionVerification, "Business registration disclosed", 3, 0.4, models.ReasonNotInDOM, "no registration/tax identifier found")
	}
	return nil
}

// detectRobotsMetaAllowsIndexing flags a meta-robots "noindex" directive,
// which undermines verifiability by signalling the publisher itself
// doesn't want the page to surface in search.
func detectRobotsMetaAllowsIndexing(c *models.NormalizedContent) *models.DetectedAttribute {
	robots := strings.ToLower(metaString(c, "meta_robots"))
	if robots == "" {
		return nil
	}
	if strings.Contains(robots, "noindex") {
		return absent(models.DimensionVerification, "Robots meta allows indexing", 3, 0.6, models.ReasonNotInDOM, "meta robots directive includes noindex")
	}
	return present(models.DimensionVerification, "Robots meta allows indexing", 7, 0.5, "meta robots directive permits indexing")
}

// detectSSLOnlyURL checks the URL isn't just https-prefixed (already
// covered by detectHTTPSTransportSecurity) but free of mixed-content
// markers in the og:image/canonical fields, an independent transport
// signal.
func detectSSLOnlyURL(c *models.NormalizedContent) *models.DetectedAttribute {
	if !strings.HasPrefix(c.URL, "https://") {
		return nil
	}
	ogImage := metaString(c, "og_image")
	if ogImage != "" && strings.HasPrefix(ogImage, "http://") {
		return partial(models.DimensionVerification, "No mixed-content references", 5, 0.5, "https page references an http image")
	}
	if strings.HasPrefix(metaString(c, "canonical_url"), "http://") {
		return partial(models.DimensionVerification, "No mixed-content references", 5, 0.5, "https page declares an http canonical URL")
	}
	return present(models.DimensionVerification, "No mixed-content references", 7, 0.45, "no http references found in checked fields")
}

// --- transparency ----------------------------------------------------------

var termsPhrases = regexp.MustCompile(`(?i)terms (of service|of use|and conditions)|conditions of use`)

// detectTermsOfServiceLinkAvailability mirrors
// detectPrivacyPolicyLinkAvailabilityClarity's evidence ladder, for the
// terms/conditions link instead of the privacy link.
func detectTermsOfServiceLinkAvailability(c *models.NormalizedContent) *models.DetectedAttribute {
	if termsURL := metaString(c, "terms_url"); termsURL != "" {
		return present(models.DimensionTransparency, "Terms of service link availability", 9, 0.75, "footer terms link present: "+termsURL)
	}
	if termsPhrases.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Terms of service link availability", 6, 0.55, "terms language found in body")
	}
	if c.SourceType == models.SourceTypeWeb && c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionTransparency, "Terms of service link availability", 2, 0.55, models.ReasonNotInDOM, "no terms link or language found")
	}
	return nil
}

var adDisclosureMarkers = regexp.MustCompile(`(?i)sponsored (content|post)|affiliate link|paid partnership|in partnership with|#ad\b`)

// detectAdvertisingDisclosurePresent only applies to content that exhibits
// commercial markers (product listings or CTA language); absent that, it's
// not applicable rather than a penalty.
func detectAdvertisingDisclosurePresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if !hasCommercialMarkers(c) {
		return nil
	}
	if adDisclosureMarkers.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Advertising disclosure present", 9, 0.65, "sponsorship/affiliate disclosure found")
	}
	return absent(models.DimensionTransparency, "Advertising disclosure present", 3, 0.5, models.ReasonNotInDOM, "commercial content without a disclosure")
}

func hasCommercialMarkers(c *models.NormalizedContent) bool {
	for _, seg := range c.StructuredBody {
		if seg.SemanticRole == models.RoleProductListing {
			return true
		}
	}
	return ctaPhrases.MatchString(c.Body)
}

var cookieConsentMarkers = regexp.MustCompile(`(?i)we use cookies|cookie (consent|policy|notice)|accept cookies`)

// detectCookieConsentDisclosurePresent looks for cookie-use disclosure
// language in body text.
func detectCookieConsentDisclosurePresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if cookieConsentMarkers.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Cookie consent disclosure present", 7, 0.55, "cookie-use disclosure found")
	}
	if c.SourceType == models.SourceTypeWeb && c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionTransparency, "Cookie consent disclosure present", 3, 0.4, models.ReasonNotInDOM, "no cookie-use disclosure found")
	}
	return nil
}

var editorialPolicyMarkers = regexp.MustCompile(`(?i)editorial (standards|policy|guidelines)|corrections policy|ethics policy`)

// detectEditorialCorrectionsPolicyPresent applies only to publisher/news
// tiers, where an editorial-standards disclosure is a meaningful signal.
func detectEditorialCorrectionsPolicyPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.Tier != models.TierNewsMedia && c.Tier != models.TierExpertProfessional {
		return nil
	}
	if editorialPolicyMarkers.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Editorial/corrections policy present", 8, 0.6, "editorial standards/corrections policy referenced")
	}
	return absent(models.DimensionTransparency, "Editorial/corrections policy present", 3, 0.45, models.ReasonNotInDOM, "no editorial standards/corrections policy found")
}

var physicalAddressMarkers = regexp.MustCompile(`(?i)\d{1,5}\s+\w+(\s\w+){0,3}\s+(street|st\.|avenue|ave\.|road|rd\.|boulevard|blvd\.|suite|ste\.)\b.{0,40}\b\d{5}(-\d{4})?\b`)

// detectPhysicalAddressDisclosed scans body text for a street-address-like
// pattern.
func detectPhysicalAddressDisclosed(c *models.NormalizedContent) *models.DetectedAttribute {
	if physicalAddressMarkers.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Physical address disclosed", 8, 0.55, "street-address pattern found in body")
	}
	if c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionTransparency, "Physical address disclosed", 3, 0.4, models.ReasonNotInDOM, "no street-address pattern found")
	}
	return nil
}

var accessibilityMarkers = regexp.MustCompile(`(?i)accessibility statement|wcag (2\.\d )?(aa|a) compliant|accessible to all users`)

// detectAccessibilityStatementPresent scans body text for an accessibility
// statement, applicable only to brand-owned primary websites.
func detectAccessibilityStatementPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.Tier != models.TierPrimaryWebsite {
		return nil
	}
	if accessibilityMarkers.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Accessibility statement present", 7, 0.5, "accessibility statement referenced")
	}
	return absent(models.DimensionTransparency, "Accessibility statement present", 4, 0.35, models.ReasonNotInDOM, "no accessibility statement found")
}

// --- coherence ---------------------------------------------------------

// detectHeadingStructureQuality rewards structured content with a clear
// headline before body text, distinct from the readability/grade-level
// signal.
func detectHeadingStructureQuality(c *models.NormalizedContent) *models.DetectedAttribute {
	if len(c.StructuredBody) == 0 {
		return nil
	}
	hasHeadline := false
	for i, seg := range c.StructuredBody {
		if seg.SemanticRole == models.RoleHeadline {
			hasHeadline = true
			if i > 2 {
				return partial(models.DimensionCoherence, "Heading structure quality", 6, 0.45, "headline present but not near the top")
			}
			break
		}
	}
	if hasHeadline {
		return present(models.DimensionCoherence, "Heading structure quality", 8, 0.55, "headline present near the top of content")
	}
	return absent(models.DimensionCoherence, "Heading structure quality", 4, 0.4, models.ReasonNotInDOM, "no headline segment found")
}

// detectBoilerplateRatio flags content dominated by footer/nav boilerplate
// relative to substantive body text.
func detectBoilerplateRatio(c *models.NormalizedContent) *models.DetectedAttribute {
	if len(c.StructuredBody) < 3 {
		return nil
	}
	footer := 0
	for _, seg := range c.StructuredBody {
		if seg.SemanticRole == models.RoleFooterText {
			footer++
		}
	}
	ratio := float64(footer) / float64(len(c.StructuredBody))
	if ratio > 0.5 {
		return absent(models.DimensionCoherence, "Low boilerplate ratio", 3, 0.5, models.ReasonNotInDOM, "majority of segments are footer/boilerplate text")
	}
	return present(models.DimensionCoherence, "Low boilerplate ratio", 8, 0.5, "substantive content dominates over boilerplate")
}

// detectContentFreshnessRecency scores a parseable publication date by
// recency; unparseable or absent dates yield no detection rather than a
// penalty, since staleness alone isn't a trust defect for evergreen pages.
func detectContentFreshnessRecency(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.PublishedAt == nil {
		return nil
	}
	published, err := time.Parse(time.RFC3339, *c.PublishedAt)
	if err != nil {
		return nil
	}
	age := time.Since(published)
	switch {
	case age < 90*24*time.Hour:
		return present(models.DimensionCoherence, "Content freshness/recency", 9, 0.6, "published within the last 90 days")
	case age < 365*24*time.Hour:
		return present(models.DimensionCoherence, "Content freshness/recency", 6, 0.5, "published within the last year")
	default:
		return partial(models.DimensionCoherence, "Content freshness/recency", 4, 0.4, "published over a year ago")
	}
}

// hasRepeatedWordRun reports the same word appearing four or more times
// consecutively, a classic keyword-stuffing artefact. Done by hand since
// RE2 has no backreferences.
func hasRepeatedWordRun(body string) bool {
	words := strings.Fields(strings.ToLower(body))
	run := 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			run++
			if run >= 4 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// detectKeywordStuffingAbsence flags the same word repeated four or more
// times consecutively.
func detectKeywordStuffingAbsence(c *models.NormalizedContent) *models.DetectedAttribute {
	if looksLikeListOrNav(c) {
		return nil
	}
	if hasRepeatedWordRun(c.Body) {
		return absent(models.DimensionCoherence, "Keyword-stuffing absence", 2, 0.6, models.ReasonNotInDOM, "repeated-word run found in body")
	}
	return present(models.DimensionCoherence, "Keyword-stuffing absence", 8, 0.5, "no repeated-word run found")
}

// --- resonance -----------------------------------------------------------

var shareButtonMarkers = regexp.MustCompile(`(?i)share (this|on) (facebook|twitter|x|linkedin)|tweet this|pin it`)

// detectSocialShareButtonPresence scans body text for social-share
// affordance language.
func detectSocialShareButtonPresence(c *models.NormalizedContent) *models.DetectedAttribute {
	if shareButtonMarkers.MatchString(c.Body) {
		return present(models.DimensionResonance, "Social share affordance present", 6, 0.4, "share-button language found")
	}
	return nil
}

var testimonialMarkers = regexp.MustCompile(`(?i)verified purchase|customer review|testimonial|\d(\.\d)? out of 5 stars`)

// detectTestimonialReviewPresence scans body text for customer-review or
// testimonial language.
func detectTestimonialReviewPresence(c *models.NormalizedContent) *models.DetectedAttribute {
	if testimonialMarkers.MatchString(c.Body) {
		return present(models.DimensionResonance, "Testimonial/review presence", 8, 0.55, "customer review/testimonial language found")
	}
	if c.PlatformType == "marketplace" {
		return absent(models.DimensionResonance, "Testimonial/review presence", 3, 0.45, models.ReasonNotInDOM, "marketplace listing with no review content found")
	}
	return nil
}

var ctaPhrases = regexp.MustCompile(`(?i)buy now|sign up (today|now)|get started|learn more|add to cart|subscribe (today|now)`)

// detectCallToActionClarity scans for clear call-to-action phrasing.
func detectCallToActionClarity(c *models.NormalizedContent) *models.DetectedAttribute {
	if ctaPhrases.MatchString(c.Body) {
		return present(models.DimensionResonance, "Call-to-action clarity", 6, 0.4, "clear call-to-action phrasing found")
	}
	return nil
}

var communityResponseMarkers = regexp.MustCompile(`(?i)\d+\s+(comments|replies|upvotes)|join the discussion`)

// detectCommunityResponsePresence scans body text for comment/discussion
// activity markers, skipped for hosts where community response isn't an
// expected feature.
func detectCommunityResponsePresence(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.PlatformType == "" || c.PlatformType == "website" {
		if c.Tier == models.TierPrimaryWebsite {
			return nil
		}
	}
	if communityResponseMarkers.MatchString(c.Body) {
		return present(models.DimensionResonance, "Community response presence", 7, 0.5, "comment/discussion activity markers found")
	}
	return nil
}
