package attributes

import (
	"strings"

	"github.com/allthingstrust/truststack/pkg/models"
)

// detectAIVsHumanLabelingClarity: footer/header disclosure
// outranks schema/meta evidence, which outranks a main-text disclosure;
// negative detection requires an AI-artefact marker with no disclosure at
// all.
func detectAIVsHumanLabelingClarity(c *models.NormalizedContent) *models.DetectedAttribute {
	main, footer := splitMainFooter(c)

	if disclosurePhrases.MatchString(footer) {
		return present(models.DimensionTransparency, "AI vs human labeling clarity", 10, 0.9, "disclosure found in footer/header")
	}
	if jsonLDHasPersonOrOrgAuthor(c) || metaBool(c, "has_provenance_manifest") || metaString(c, "meta_author") != "" {
		return present(models.DimensionTransparency, "AI vs human labeling clarity", 8, 0.75, "author/creator or provenance manifest present")
	}
	if disclosurePhrases.MatchString(main) {
		return present(models.DimensionTransparency, "AI vs human labeling clarity", 6, 0.6, "disclosure found in main content")
	}
	if aiArtifactPhrases.MatchString(main) {
		return absent(models.DimensionTransparency, "AI vs human labeling clarity", 2, 0.7, models.ReasonNotInDOM, "AI-artefact phrasing found with no disclosure")
	}
	return nil
}

// detectAuthorBrandIdentityVerified walks a ranked-evidence
// ladder: explicit byline > schema author > site-level inheritance > a
// weak "About" mention.
func detectAuthorBrandIdentityVerified(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.Author != "" {
		return present(models.DimensionProvenance, "Author/brand identity verified", 10, 0.9, "explicit byline: "+c.Author)
	}
	if jsonLDHasPersonOrOrgAuthor(c) {
		return present(models.DimensionProvenance, "Author/brand identity verified", 8, 0.75, "schema.org author/creator present")
	}
	if c.SourceType == models.SourceTypeWeb && c.Tier == models.TierPrimaryWebsite {
		return present(models.DimensionProvenance, "Author/brand identity verified", 6, 0.5, "site-level identity inherited from brand-owned primary website")
	}
	if weakAboutMention(c.Body) {
		return partial(models.DimensionProvenance, "Author/brand identity verified", 4, 0.35, "weak About-page self-identification")
	}
	return nil
}

// detectC2PACAIManifestPresent only applies to visual content; text
// with no significant visuals returns no detection at all, not a penalty.
func detectC2PACAIManifestPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.Modality != models.ModalityImage && c.Modality != models.ModalityVideo && !c.HasSignificantVisuals() {
		return nil
	}
	if metaBool(c, "has_provenance_manifest") {
		return present(models.DimensionProvenance, "C2PA/CAI manifest present", 10, 0.85, "provenance manifest link/meta detected")
	}
	return absent(models.DimensionProvenance, "C2PA/CAI manifest present", 2, 0.6, models.ReasonNotInDOM, "no provenance manifest indicators found")
}

// detectCanonicalURLMatchesDeclaredSource implements the exact scoring
// ladder.
func detectCanonicalURLMatchesDeclaredSource(c *models.NormalizedContent) *models.DetectedAttribute {
	canonical := metaString(c, "canonical_url")
	if canonical == "" {
		return nil
	}
	if canonical == c.URL {
		return present(models.DimensionProvenance, "Canonical URL matches declared source", 10, 0.9, "exact match")
	}

	declaredHost := stripWWWAttr(hostOfURL(c.URL))
	canonicalHost := stripWWWAttr(hostOfURL(canonical))
	declaredPath := strings.TrimSuffix(pathOf(c.URL), "/")
	canonicalPath := strings.TrimSuffix(pathOf(canonical), "/")

	switch {
	case declaredHost == canonicalHost && declaredPath == canonicalPath:
		return present(models.DimensionProvenance, "Canonical URL matches declared source", 10, 0.85, "host matches modulo www, path matches")
	case declaredHost == canonicalHost:
		return present(models.DimensionProvenance, "Canonical URL matches declared source", 5, 0.6, "same host, different path")
	default:
		return absent(models.DimensionProvenance, "Canonical URL matches declared source", 1, 0.7, models.ReasonNotInDOM, "canonical host mismatch")
	}
}

func stripWWWAttr(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func pathOf(rawURL string) string {
	host := hostOfURL(rawURL)
	idx := strings.Index(rawURL, host)
	if idx < 0 {
		return rawURL
	}
	return rawURL[idx+len(host):]
}

// detectDomainAge scores on a year-band ladder and is skipped for
// known social hosts, which carry their own trust baseline.
func detectDomainAge(c *models.NormalizedContent) *models.DetectedAttribute {
	host := hostOfURL(c.URL)
	if isKnownSocialHost(host) {
		return nil
	}
	years, ok := metaFloat(c, "domain_age_years")
	if !ok {
		return nil
	}
	var value float64
	switch {
	case years >= 10:
		value = 10
	case years >= 5:
		value = 5
	case years >= 2:
		value = 2
	case years >= 1:
		value = 1
	default:
		value = 0.5
	}
	return present(models.DimensionProvenance, "Domain age", value, 0.7, "registered domain age banding")
}

// detectWhoisPrivacy: privacy-enabled registrations score
// mid; a publicly visible organisation scores high.
func detectWhoisPrivacy(c *models.NormalizedContent) *models.DetectedAttribute {
	if metaBool(c, "whois_privacy_enabled") {
		return present(models.DimensionProvenance, "WHOIS privacy", 5, 0.6, "privacy-protected registration")
	}
	if metaBool(c, "whois_org_visible") {
		return present(models.DimensionProvenance, "WHOIS privacy", 9, 0.7, "publicly visible registrant organisation")
	}
	return nil
}

// detectVerifiedPlatformAccount reads the verification badge captured
// during fetch.
func detectVerifiedPlatformAccount(c *models.NormalizedContent) *models.DetectedAttribute {
	host := hostOfURL(c.URL)
	if metaBool(c, "verification_badge_verified") {
		return present(models.DimensionVerification, "Verified platform account", 10, 0.9, "platform verification badge detected")
	}
	if isKnownSocialHost(host) {
		return absent(models.DimensionVerification, "Verified platform account", 3, 0.5, models.ReasonNotInDOM, "known social host without a verification badge")
	}
	return nil
}

// detectReadabilityGradeLevelFit scores median-words-per-sentence
// bands, skipping content that is predominantly list/navigation material.
func detectReadabilityGradeLevelFit(c *models.NormalizedContent) *models.DetectedAttribute {
	if looksLikeListOrNav(c) {
		return nil
	}
	median := medianWordsPerSentence(c.Body)
	if median == 0 {
		return nil
	}
	var value float64
	switch {
	case median >= 12 && median <= 22:
		value = 10
	case median >= 8 && median <= 30:
		value = 7
	default:
		value = 4
	}
	return present(models.DimensionCoherence, "Readability grade-level fit", value, 0.6, "median words per sentence banding")
}

// detectPrivacyPolicyLinkAvailabilityClarity walks an evidence
// ladder; negative detection is reserved for owned content types.
func detectPrivacyPolicyLinkAvailabilityClarity(c *models.NormalizedContent) *models.DetectedAttribute {
	if looksLikePolicyURL(c.URL) {
		return present(models.DimensionTransparency, "Privacy policy link availability", 10, 0.8, "URL itself is a policy page")
	}
	if policyURL := metaString(c, "privacy_url"); policyURL != "" {
		return present(models.DimensionTransparency, "Privacy policy link availability", 9, 0.75, "footer privacy link present: "+policyURL)
	}
	if policyPhrases.MatchString(c.Body) {
		return present(models.DimensionTransparency, "Privacy policy link availability", 7, 0.6, "policy language found in body")
	}
	if c.SourceType == models.SourceTypeWeb {
		return absent(models.DimensionTransparency, "Privacy policy link availability", 2, 0.6, models.ReasonNotInDOM, "no privacy policy link or language found")
	}
	return nil
}

var noEngagementHostSuffixes = []string{".gov", ".edu"}

// detectEngagementToTrustCorrelation (and its engagement_authenticity_ratio
// alias) is skipped entirely for content types where engagement signals
// aren't meaningful.
func detectEngagementToTrustCorrelation(c *models.NormalizedContent) *models.DetectedAttribute {
	host := hostOfURL(c.URL)
	for _, suffix := range noEngagementHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return nil
		}
	}
	if c.PlatformType == "" || c.PlatformType == "website" {
		if c.Tier == models.TierPrimaryWebsite && !metaBool(c, "has_reviews_section") {
			return nil
		}
	}
	ratio, ok := metaFloat(c, "engagement_authenticity_ratio")
	if !ok {
		return nil
	}
	value := ratio * 10
	if value > 10 {
		value = 10
	}
	return present(models.DimensionResonance, "Engagement-to-trust correlation", value, 0.55, "engagement authenticity ratio observed")
}

// detectDataSourceCitationsForClaims (and claim_to_source_traceability)
// only evaluates pages exhibiting data-claim markers.
func detectDataSourceCitationsForClaims(c *models.NormalizedContent) *models.DetectedAttribute {
	if !hasDataClaimMarkers(c.Body) {
		return nil
	}
	if hasCitationMarkers(c.Body) {
		return present(models.DimensionCoherence, "Data-source citations for claims", 9, 0.7, "data claims accompanied by citation markers")
	}
	return absent(models.DimensionCoherence, "Data-source citations for claims", 3, 0.65, models.ReasonNotInDOM, "data claims present without citations")
}

func detectTitlePresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if strings.TrimSpace(c.Title) == "" {
		return absent(models.DimensionTransparency, "Title present", 2, 0.8, models.ReasonNotInDOM, "no page title found")
	}
	return present(models.DimensionTransparency, "Title present", 8, 0.8, "page title present")
}

func detectMetaDescriptionQuality(c *models.NormalizedContent) *models.DetectedAttribute {
	desc := metaString(c, "meta_description")
	length := len(strings.TrimSpace(desc))
	switch {
	case length == 0:
		return absent(models.DimensionTransparency, "Meta description quality", 3, 0.6, models.ReasonNotInDOM, "no meta description")
	case length < 50:
		return partial(models.DimensionTransparency, "Meta description quality", 5, 0.5, "meta description present but short")
	default:
		return present(models.DimensionTransparency, "Meta description quality", 8, 0.7, "meta description present and substantive")
	}
}

func detectStructuredDataPresence(c *models.NormalizedContent) *models.DetectedAttribute {
	var hasJSONLD bool
	if jsonLD, ok := c.Metadata["json_ld"].([]map[string]any); ok {
		hasJSONLD = len(jsonLD) > 0
	}
	hasMicrodata := metaBool(c, "has_microdata")
	hasRDFa := metaBool(c, "has_rdfa")
	if hasJSONLD || hasMicrodata || hasRDFa {
		return present(models.DimensionProvenance, "Structured data presence", 9, 0.75, "JSON-LD/microdata/RDFa detected")
	}
	return absent(models.DimensionProvenance, "Structured data presence", 3, 0.6, models.ReasonNotInDOM, "no structured data markers found")
}

func detectHTTPSTransportSecurity(c *models.NormalizedContent) *models.DetectedAttribute {
	if strings.HasPrefix(c.URL, "https://") {
		return present(models.DimensionVerification, "HTTPS transport security", 9, 0.9, "served over HTTPS")
	}
	return absent(models.DimensionVerification, "HTTPS transport security", 2, 0.9, models.ReasonNotInDOM, "served over plain HTTP")
}

var contactPhrase = "contact us"

func detectContactInformationAvailability(c *models.NormalizedContent) *models.DetectedAttribute {
	lower := strings.ToLower(c.Body)
	if strings.Contains(lower, contactPhrase) || strings.Contains(lower, "@") {
		return present(models.DimensionTransparency, "Contact information availability", 7, 0.55, "contact information found in body")
	}
	if c.SourceType == models.SourceTypeWeb && c.Tier == models.TierPrimaryWebsite {
		return absent(models.DimensionTransparency, "Contact information availability", 3, 0.5, models.ReasonNotInDOM, "no contact information found")
	}
	return nil
}

func detectLanguageDeclarationPresent(c *models.NormalizedContent) *models.DetectedAttribute {
	if c.Language == "" {
		return nil
	}
	return present(models.DimensionCoherence, "Language declaration present", 6, 0.5, "language detected: "+c.Language)
}
