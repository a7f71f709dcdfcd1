package models

// Dimension is one of the five Trust Stack axes.
type Dimension string

const (
	DimensionProvenance    Dimension = "provenance"
	DimensionVerification  Dimension = "verification"
	DimensionTransparency  Dimension = "transparency"
	DimensionCoherence     Dimension = "coherence"
	DimensionResonance     Dimension = "resonance"
)

// AllDimensions lists the five scoring dimensions in a stable order.
var AllDimensions = []Dimension{
	DimensionProvenance,
	DimensionVerification,
	DimensionTransparency,
	DimensionCoherence,
	DimensionResonance,
}

// AttributeStatus is the outcome of a single attribute detector.
type AttributeStatus string

const (
	AttributeStatusPresent AttributeStatus = "present"
	AttributeStatusAbsent  AttributeStatus = "absent"
	AttributeStatusPartial AttributeStatus = "partial"
	AttributeStatusUnknown AttributeStatus = "unknown"
)

// AttributeReason further explains an absent/unknown status.
type AttributeReason string

const (
	ReasonNotInDOM        AttributeReason = "not_in_dom"
	ReasonUnreadable      AttributeReason = "unreadable"
	ReasonBlocked         AttributeReason = "blocked"
	ReasonClientRendered  AttributeReason = "client_rendered"
)

// DetectedAttribute is a single detection result (transient, produced per
// asset by the attribute detector, consumed by the aggregator).
type DetectedAttribute struct {
	AttributeID string          `json:"attribute_id"`
	Dimension   Dimension       `json:"dimension"`
	Label       string          `json:"label"`
	Value       float64         `json:"value"` // 1..10
	Evidence    string          `json:"evidence,omitempty"`
	Confidence  float64         `json:"confidence"` // 0..1
	Suggestion  string          `json:"suggestion,omitempty"`
	SourceURL   string          `json:"source_url,omitempty"`
	Status      AttributeStatus `json:"status"`
	Reason      AttributeReason `json:"reason,omitempty"`
}

// SignalScore is a per-signal input to the aggregator (transient).
type SignalScore struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Dimension  Dimension `json:"dimension"`
	Value      float64   `json:"value"` // 0..10
	Weight     float64   `json:"weight"` // 0..1
	Evidence   []string  `json:"evidence,omitempty"`
	Rationale  string    `json:"rationale,omitempty"`
	Confidence float64   `json:"confidence"` // 0..1
}

// DimensionScores holds per-asset scores produced by the scoring pipeline.
type DimensionScores struct {
	ID                 string             `json:"id"`
	AssetID            string             `json:"asset_id"`
	Provenance         float64            `json:"provenance"`
	Verification       float64            `json:"verification"`
	Transparency       float64            `json:"transparency"`
	Coherence          float64            `json:"coherence"`
	Resonance          float64            `json:"resonance"`
	Overall            float64            `json:"overall"`
	Classification     string             `json:"classification"`
	Rationale          map[string]any     `json:"rationale"`
	Flags              []string           `json:"flags,omitempty"`
}

// ByDimension returns the score for the named dimension.
func (d *DimensionScores) ByDimension(dim Dimension) float64 {
	switch dim {
	case DimensionProvenance:
		return d.Provenance
	case DimensionVerification:
		return d.Verification
	case DimensionTransparency:
		return d.Transparency
	case DimensionCoherence:
		return d.Coherence
	case DimensionResonance:
		return d.Resonance
	default:
		return 0
	}
}

// SetDimension sets the score for the named dimension.
func (d *DimensionScores) SetDimension(dim Dimension, v float64) {
	switch dim {
	case DimensionProvenance:
		d.Provenance = v
	case DimensionVerification:
		d.Verification = v
	case DimensionTransparency:
		d.Transparency = v
	case DimensionCoherence:
		d.Coherence = v
	case DimensionResonance:
		d.Resonance = v
	}
}

// TrustStackSummary is the one-per-run aggregate.
type TrustStackSummary struct {
	ID                string         `json:"id"`
	RunID             string         `json:"run_id"`
	Provenance        float64        `json:"provenance"`
	Verification      float64        `json:"verification"`
	Transparency      float64        `json:"transparency"`
	Coherence         float64        `json:"coherence"`
	Resonance         float64        `json:"resonance"`
	OverallScore      float64        `json:"overall_score"` // 0..100
	AuthenticityRatio *float64       `json:"authenticity_ratio,omitempty"` // legacy, optional
	Insights          map[string]any `json:"insights,omitempty"`
}

// StructuredSegment is one element of NormalizedContent's structured body.
type StructuredSegment struct {
	Text         string `json:"text"`
	ElementType  string `json:"element_type"`
	SemanticRole string `json:"semantic_role"`
}

// Semantic roles for StructuredSegment.
const (
	RoleHeadline        = "headline"
	RoleSubheadline     = "subheadline"
	RoleListItem        = "list_item"
	RoleProductListing  = "product_listing"
	RoleHero            = "hero"
	RoleBanner          = "banner"
	RoleTagline         = "tagline"
	RoleFooterText      = "footer_text"
	RoleBodyText        = "body_text"
)

// NormalizedContent is the fetch-and-extract product handed to the detector.
type NormalizedContent struct {
	ContentID        string               `json:"content_id"`
	SourceType       SourceType           `json:"source_type"`
	Tier             Tier                 `json:"tier,omitempty"`
	PlatformID       string               `json:"platform_id,omitempty"`
	Author           string               `json:"author,omitempty"`
	Title            string               `json:"title"`
	Body             string               `json:"body"`
	StructuredBody   []StructuredSegment  `json:"structured_body,omitempty"`
	URL              string               `json:"url"`
	PublishedAt      *string              `json:"published_at,omitempty"`
	Modality         Modality             `json:"modality"`
	Channel          string               `json:"channel,omitempty"`
	PlatformType     string               `json:"platform_type,omitempty"`
	Language         string               `json:"language,omitempty"`
	ScreenshotRef    string               `json:"screenshot_ref,omitempty"`
	Metadata         map[string]any       `json:"metadata,omitempty"`
	VisualAnalysis   map[string]any       `json:"visual_analysis,omitempty"`
}

// HasSignificantVisuals reports the metadata flag used by visual-gated
// detectors (e.g. c2pa_cai_manifest_present).
func (n *NormalizedContent) HasSignificantVisuals() bool {
	if n.Metadata == nil {
		return false
	}
	v, _ := n.Metadata["has_significant_visuals"].(bool)
	return v
}
