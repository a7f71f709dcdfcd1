package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/allthingstrust/truststack/pkg/fetch"
	"github.com/allthingstrust/truststack/pkg/metadata"
	"github.com/allthingstrust/truststack/pkg/models"
	"github.com/allthingstrust/truststack/pkg/whois"
)

// generateExternalID builds the run external id `{slug}_{YYYYMMDD_HHMMSS}_{6
// hex chars}`.
func generateExternalID(brandSlug string) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s_%s_%s", brandSlug, time.Now().UTC().Format("20060102_150405"), hex.EncodeToString(suffix))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// buildNormalizedContent reconstructs the richer pkg/models.NormalizedContent
// the scoring pipeline and attribute detector operate on from a persisted
// (or freshly collected) ContentAsset, re-running C8's enrichment over the
// asset's raw HTML when available and, for every asset with raw HTML,
// folding in a WHOIS lookup so the domain_age/whois_privacy detectors have
// their expected metadata keys. whoisClient may be nil, in which case those
// keys are simply left unset and the detectors report "unknown".
func buildNormalizedContent(ctx context.Context, asset *models.ContentAsset, whoisClient *whois.Client) *models.NormalizedContent {
	nc := &models.NormalizedContent{
		SourceType:    asset.SourceType,
		Tier:          asset.Tier,
		Title:         asset.Title,
		Body:          asset.NormalizedContent,
		URL:           asset.URL,
		Modality:      asset.Modality,
		Channel:       asset.Channel,
		Language:      asset.Language,
		ScreenshotRef: asset.ScreenshotRef,
		Metadata:      make(map[string]any, len(asset.MetaInfo)+8),
	}
	for k, v := range asset.MetaInfo {
		nc.Metadata[k] = v
	}
	if badge, ok := asset.MetaInfo["verification"].(*fetch.VerificationBadge); ok && badge != nil {
		nc.Metadata["verification_badge_verified"] = badge.Verified
		nc.Metadata["verification_badge_platform"] = badge.Platform
		nc.Metadata["verification_badge_evidence"] = badge.Evidence
	}

	if strings.TrimSpace(asset.RawContent) == "" {
		return nc
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(asset.RawContent))
	if err != nil {
		return nc
	}

	enrich := metadata.Extract(doc, asset.URL, hostOf(asset.URL))
	if nc.Channel == "" {
		nc.Channel = enrich.Channel
	}
	nc.PlatformType = enrich.PlatformType
	if enrich.Modality != "" {
		nc.Modality = models.Modality(enrich.Modality)
	}
	nc.Metadata["canonical_url"] = enrich.CanonicalURL
	nc.Metadata["has_microdata"] = enrich.HasMicrodata
	nc.Metadata["has_rdfa"] = enrich.HasRDFa
	nc.Metadata["json_ld"] = enrich.JSONLD
	nc.Metadata["has_significant_visuals"] = enrich.HasSignificantVisuals
	nc.Metadata["has_provenance_manifest"] = enrich.HasProvenanceManifest
	nc.Metadata["meta_description"] = enrich.MetaDescription
	nc.Metadata["meta_author"] = enrich.MetaAuthor
	nc.Metadata["meta_keywords"] = enrich.MetaKeywords
	nc.Metadata["meta_robots"] = enrich.MetaRobots
	for k, v := range enrich.OpenGraph {
		nc.Metadata["og_"+k] = v
	}

	if whoisClient != nil && asset.URL != "" {
		rec := whoisClient.Lookup(ctx, asset.URL)
		if rec.Err == nil {
			if rec.HasDomainAge {
				nc.Metadata["domain_age_years"] = rec.DomainAgeYears
			}
			nc.Metadata["whois_privacy_enabled"] = rec.PrivacyEnabled
			nc.Metadata["whois_org_visible"] = rec.OrgVisible
		}
	}
	return nc
}
