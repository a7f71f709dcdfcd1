package models

import "time"

// SourceType classifies where a ContentAsset was harvested from.
type SourceType string

const (
	SourceTypeWeb    SourceType = "web"
	SourceTypeReddit SourceType = "reddit"
	SourceTypeYoutube SourceType = "youtube"
	SourceTypeBrave  SourceType = "brave"
	SourceTypeSerper SourceType = "serper"
	SourceTypeSocial SourceType = "social"
)

// Modality is the medium class of an asset.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
)

// OwnershipType is the brand-owned vs third-party classification axis.
type OwnershipType string

const (
	OwnershipBrandOwned  OwnershipType = "brand_owned"
	OwnershipThirdParty  OwnershipType = "third_party"
	OwnershipUnknown     OwnershipType = "unknown"
)

// Tier is a fine-grained classification within brand-owned/third-party.
type Tier string

const (
	TierPrimaryWebsite     Tier = "primary_website"
	TierContentHub         Tier = "content_hub"
	TierDirectToConsumer   Tier = "direct_to_consumer"
	TierBrandSocial        Tier = "brand_social"
	TierNewsMedia          Tier = "news_media"
	TierUserGenerated      Tier = "user_generated"
	TierExpertProfessional Tier = "expert_professional"
	TierMarketplace        Tier = "marketplace"
)

// ContentAsset is a single scored page or post.
type ContentAsset struct {
	ID               string         `json:"id"`
	RunID            string         `json:"run_id"`
	SourceType       SourceType     `json:"source_type"`
	Channel          string         `json:"channel"`
	URL              string         `json:"url"`
	ExternalID       string         `json:"external_id,omitempty"`
	Title            string         `json:"title,omitempty"`
	RawContent       string         `json:"raw_content,omitempty"`
	NormalizedContent string        `json:"normalized_content,omitempty"`
	Modality         Modality       `json:"modality"`
	Language         string         `json:"language,omitempty"`
	ScreenshotRef    string         `json:"screenshot_ref,omitempty"`
	VisualAnalysis   map[string]any `json:"visual_analysis,omitempty"`
	Ownership        OwnershipType  `json:"ownership,omitempty"`
	Tier             Tier           `json:"tier,omitempty"`
	MetaInfo         map[string]any `json:"meta_info"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Metadata returns the asset's free-form metadata map. Some call sites
// historically expect an `asset.Metadata()` accessor rather than the raw
// `MetaInfo` field (see Open Question 3 in SPEC_FULL.md); both names resolve
// to the same backing map.
func (a *ContentAsset) Metadata() map[string]any {
	if a.MetaInfo == nil {
		a.MetaInfo = make(map[string]any)
	}
	return a.MetaInfo
}

// AccessDenied reports whether this asset's fetch was blocked (401/403 or
// anti-bot heuristics). Read from meta_info["access_denied"].
func (a *ContentAsset) AccessDenied() bool {
	v, ok := a.MetaInfo["access_denied"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// HasContent reports the invariant that either raw or normalized content is
// present unless this is a manual upload (which must carry a screenshot).
func (a *ContentAsset) HasContent() bool {
	if a.RawContent != "" || a.NormalizedContent != "" {
		return true
	}
	return a.ScreenshotRef != ""
}
