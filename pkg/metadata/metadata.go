// Package metadata implements the page-enrichment extraction layer:
// modality/channel/platform-type inference, structured-data detection,
// canonical URL, Open Graph/meta extraction, provenance-manifest
// indicators, and the significant-visuals flag.
package metadata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Enrichment is the C8 output merged onto a fetched page record.
type Enrichment struct {
	Modality             string
	Channel               string
	PlatformType          string
	JSONLD                []map[string]any
	HasMicrodata          bool
	HasRDFa               bool
	CanonicalURL          string
	OpenGraph             map[string]string
	MetaDescription       string
	MetaKeywords          string
	MetaAuthor            string
	MetaRobots            string
	HasProvenanceManifest bool
	HasSignificantVisuals bool
}

// hostTable maps known platform hosts to their channel/platform_type/modality
// triple.
type hostEntry struct {
	Channel      string
	PlatformType string
	Modality     string
}

var hostTable = map[string]hostEntry{
	"youtube.com":   {"youtube", "video_platform", "video"},
	"youtu.be":      {"youtube", "video_platform", "video"},
	"reddit.com":    {"reddit", "forum", "text"},
	"instagram.com": {"instagram", "social_network", "image"},
	"tiktok.com":    {"tiktok", "social_network", "video"},
	"facebook.com":  {"facebook", "social_network", "text"},
	"twitter.com":   {"twitter", "social_network", "text"},
	"x.com":         {"twitter", "social_network", "text"},
	"amazon.com":    {"amazon", "marketplace", "text"},
	"etsy.com":      {"etsy", "marketplace", "text"},
	"ebay.com":      {"ebay", "marketplace", "text"},
}

// significantClassHints and their disqualifiers drive the visuals flag.
var significantClassHints = []string{"hero", "banner", "featured", "cover", "main-image", "post-image"}
var nonSignificantClassHints = []string{"logo", "icon", "avatar", "footer", "nav", "social"}

// Extract enriches a parsed document for host into an Enrichment record.
func Extract(doc *goquery.Document, rawURL, host string) Enrichment {
	e := Enrichment{OpenGraph: map[string]string{}}

	e.Channel, e.PlatformType, e.Modality = channelFor(host)
	e.JSONLD = extractJSONLD(doc)
	e.HasMicrodata = doc.Find("[itemtype]").Length() > 0
	e.HasRDFa = doc.Find("[typeof]").Length() > 0
	e.CanonicalURL, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")

	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if strings.HasPrefix(prop, "og:") {
			content, _ := s.Attr("content")
			e.OpenGraph[strings.TrimPrefix(prop, "og:")] = content
		}
	})
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		switch strings.ToLower(name) {
		case "description":
			e.MetaDescription = content
		case "keywords":
			e.MetaKeywords = content
		case "author":
			e.MetaAuthor = content
		case "robots":
			e.MetaRobots = content
		}
	})

	if ogType, ok := e.OpenGraph["type"]; ok {
		e.Modality = modalityFromOGType(ogType, e.Modality)
	} else {
		e.Modality = modalityFromURL(rawURL, e.Modality)
	}

	e.HasProvenanceManifest = detectsProvenanceManifest(doc)
	e.HasSignificantVisuals = detectSignificantVisuals(doc)

	return e
}

func channelFor(host string) (channel, platformType, modality string) {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for h, entry := range hostTable {
		if host == h || strings.HasSuffix(host, "."+h) {
			return entry.Channel, entry.PlatformType, entry.Modality
		}
	}
	return hostLabel(host), "website", "text"
}

func hostLabel(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return host
}

func modalityFromOGType(ogType, fallback string) string {
	switch {
	case strings.Contains(ogType, "video"):
		return "video"
	case strings.Contains(ogType, "music") || strings.Contains(ogType, "audio"):
		return "audio"
	case strings.Contains(ogType, "image") || strings.Contains(ogType, "photo"):
		return "image"
	default:
		return fallback
	}
}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".avi"}
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}
var audioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a"}

func modalityFromURL(rawURL, fallback string) string {
	lower := strings.ToLower(rawURL)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return "video"
		}
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return "image"
		}
	}
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return "audio"
		}
	}
	return fallback
}

// extractJSONLD collects every application/ld+json script's parsed payload,
// skipping blocks that fail to parse.
func extractJSONLD(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err == nil {
			out = append(out, parsed)
		}
	})
	return out
}

// detectsProvenanceManifest implements the C2PA/CAI indicator checks.
func detectsProvenanceManifest(doc *goquery.Document) bool {
	if doc.Find(`link[rel="c2pa-manifest"]`).Length() > 0 {
		return true
	}
	if doc.Find(`link[rel="cai-manifest"]`).Length() > 0 {
		return true
	}
	if doc.Find(`meta[name="c2pa-manifest"]`).Length() > 0 {
		return true
	}
	if doc.Find(`script[type="application/c2pa-manifest+json"]`).Length() > 0 {
		return true
	}
	return false
}

// detectSignificantVisuals applies the significant-visuals heuristic.
func detectSignificantVisuals(doc *goquery.Document) bool {
	significant := false
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if imageIsSignificant(s) {
			significant = true
			return false
		}
		return true
	})
	if significant {
		return true
	}
	if doc.Find("video").Length() > 0 {
		return true
	}
	if embedsYouTubeOrVimeo(doc) {
		return true
	}
	return false
}

func imageIsSignificant(s *goquery.Selection) bool {
	class := strings.ToLower(attrOrEmpty(s, "class"))
	for _, bad := range nonSignificantClassHints {
		if strings.Contains(class, bad) {
			return false
		}
	}
	for _, good := range significantClassHints {
		if strings.Contains(class, good) {
			return true
		}
	}
	width := parseDimension(attrOrEmpty(s, "width"))
	height := parseDimension(attrOrEmpty(s, "height"))
	return width > 250 || height > 250
}

func attrOrEmpty(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

func parseDimension(raw string) int {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func embedsYouTubeOrVimeo(doc *goquery.Document) bool {
	found := false
	doc.Find("iframe[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		lower := strings.ToLower(src)
		if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") || strings.Contains(lower, "vimeo.com") {
			found = true
			return false
		}
		return true
	})
	return found
}
