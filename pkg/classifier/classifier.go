// Package classifier implements the brand-owned vs third-party domain
// classification axis used for collection ratio enforcement.
package classifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/allthingstrust/truststack/pkg/models"
)

// BrandConfig carries the classifier inputs resolved from scenario config.
type BrandConfig struct {
	BrandDomains       []string // e.g. "nike.com"
	BrandSubdomains    []string // e.g. "news.nike.com"
	BrandSocialHandles map[string][]string // social host ("instagram.com") -> accepted handles
	BrandOwnedRatio    float64             // target ratio used to decide "brand-controlled"
}

// socialHosts maps known social platform hosts to their canonical form.
var socialHosts = map[string]bool{
	"instagram.com": true,
	"facebook.com":  true,
	"twitter.com":   true,
	"x.com":         true,
	"linkedin.com":  true,
	"tiktok.com":    true,
	"youtube.com":   true,
}

// newsMediaHosts is a small built-in allowlist used to pick a sensible tier
// when a third-party URL isn't otherwise distinguishable.
var newsMediaHosts = map[string]bool{
	"nytimes.com": true, "reuters.com": true, "bloomberg.com": true,
	"forbes.com": true, "cnbc.com": true, "wsj.com": true, "bbc.com": true,
}

var marketplaceHosts = map[string]bool{
	"amazon.com": true, "ebay.com": true, "etsy.com": true, "walmart.com": true,
}

// Result is the classifier's output for a single URL.
type Result struct {
	SourceType models.OwnershipType
	Tier       models.Tier
	Reason     string
}

// Classify determines whether rawURL belongs to the brand and, if so, which
// tier of brand presence; otherwise classifies the third-party tier.
func Classify(rawURL string, cfg BrandConfig) Result {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Result{SourceType: models.OwnershipUnknown, Reason: "unparsable URL"}
	}
	host := stripWWW(strings.ToLower(u.Host))

	if matchesAny(host, cfg.BrandDomains) {
		return Result{
			SourceType: models.OwnershipBrandOwned,
			Tier:       models.TierPrimaryWebsite,
			Reason:     fmt.Sprintf("host %q matches configured brand domain", host),
		}
	}
	if matchesAny(host, cfg.BrandSubdomains) {
		return Result{
			SourceType: models.OwnershipBrandOwned,
			Tier:       models.TierContentHub,
			Reason:     fmt.Sprintf("host %q matches configured brand subdomain", host),
		}
	}
	if socialHosts[host] {
		if handleMatches(u.Path, cfg.BrandSocialHandles[host]) {
			return Result{
				SourceType: models.OwnershipBrandOwned,
				Tier:       models.TierBrandSocial,
				Reason:     fmt.Sprintf("handle on %q matches configured brand social handle", host),
			}
		}
		return Result{
			SourceType: models.OwnershipThirdParty,
			Tier:       models.TierUserGenerated,
			Reason:     fmt.Sprintf("%q is a social host but handle is not a configured brand handle", host),
		}
	}

	switch {
	case newsMediaHosts[host]:
		return Result{SourceType: models.OwnershipThirdParty, Tier: models.TierNewsMedia, Reason: "known news/media host"}
	case marketplaceHosts[host]:
		return Result{SourceType: models.OwnershipThirdParty, Tier: models.TierMarketplace, Reason: "known marketplace host"}
	default:
		return Result{SourceType: models.OwnershipThirdParty, Tier: models.TierExpertProfessional, Reason: "unrecognised third-party host"}
	}
}

// IsBrandControlled reports whether the configured ratio crosses the
// brand-controlled threshold (>= 0.8), under which the collector relaxes
// domain-diversity caps.
func IsBrandControlled(cfg BrandConfig) bool {
	return cfg.BrandOwnedRatio >= 0.8
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		d = stripWWW(strings.ToLower(d))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// handleMatches checks whether urlPath references one of the configured
// social handles, e.g. path "/nike/" matching handle "nike".
func handleMatches(urlPath string, handles []string) bool {
	trimmed := strings.Trim(strings.ToLower(urlPath), "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) == 0 {
		return false
	}
	first := strings.TrimPrefix(segments[0], "@")
	for _, h := range handles {
		if strings.EqualFold(strings.TrimPrefix(h, "@"), first) {
			return true
		}
	}
	return false
}
