// Package fetch implements the unified HTTP+browser page fetcher: it
// combines plain HTTP with the headless browser controller, implements
// smart fallback between the two, extracts structured body text and
// footer/legal links, and captures screenshots.
package fetch

import "time"

// Page is the normalised fetch product.
type Page struct {
	URL              string
	Title            string
	Body             string
	StructuredBody   []Segment
	PrivacyURL       string
	TermsURL         string
	Verification     *VerificationBadge
	ScreenshotRef    string
	AccessDenied     bool
	StatusCode       int
	HTML             string // raw HTML, retained for metadata extraction
}

// Segment is one structured-body element (text, element type, inferred role).
type Segment struct {
	Text         string
	ElementType  string
	SemanticRole string
}

// VerificationBadge is the per-social-host verification detection result.
type VerificationBadge struct {
	Platform string
	Verified bool
	Evidence string
}

// DomainConfig carries per-host fetch tuning, derived from host patterns.
type DomainConfig struct {
	MaxRetries  int
	Timeout     time.Duration
	BaseBackoff time.Duration
	RandomDelay time.Duration // sleep applied on retry attempts after the first

	// BrowserOn403 permits the browser fallback when this host answers the
	// HTTP path with a 403. Hosts that 403 the browser too (or that must
	// never see one) opt out here.
	BrowserOn403 bool
}

// DefaultDomainConfig is used for hosts without a specific override.
func DefaultDomainConfig() DomainConfig {
	return DomainConfig{
		MaxRetries:   3,
		Timeout:      10 * time.Second,
		BaseBackoff:  500 * time.Millisecond,
		RandomDelay:  300 * time.Millisecond,
		BrowserOn403: true,
	}
}

// MinBodyLength is the default thin-content threshold.
const MinBodyLength = 200

// ThinContentFallbackThreshold triggers a browser retry when the HTTP path
// yields a body shorter than this.
const ThinContentFallbackThreshold = 200
