package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentClassHints are substrings of a div's class attribute accepted by
// the body-extraction ladder.
var contentClassHints = []string{
	"content", "post-content", "article-body", "article", "entry", "post", "story-body",
}

// ExtractTitle takes <title>, falling back to og:title / twitter:title.
func ExtractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return ""
}

// ExtractBody runs the body-extraction strategy ladder:
// product grid → article → main/role=main
// → content-class div with >=150 chars → concatenated <p> → body fallback.
func ExtractBody(doc *goquery.Document) string {
	if grid := extractProductGridText(doc); grid != "" {
		return grid
	}
	if t := textOf(doc.Find("article").First()); t != "" {
		return t
	}
	if t := textOf(doc.Find(`main, [role="main"]`).First()); t != "" {
		return t
	}
	var best string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		classLower := strings.ToLower(class)
		for _, hint := range contentClassHints {
			if strings.Contains(classLower, hint) {
				if text := textOf(s); len(text) >= 150 {
					best = text
					return false
				}
			}
		}
		return true
	})
	if best != "" {
		return best
	}
	if t := paragraphsText(doc); t != "" {
		return t
	}
	return textOf(doc.Find("body").First())
}

func textOf(s *goquery.Selection) string {
	return strings.TrimSpace(collapseWhitespace(s.Text()))
}

func paragraphsText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// extractProductGridText recognises a product grid (>=3 cards with a title
// and a price/button) and returns its concatenated text, or "" if none.
func extractProductGridText(doc *goquery.Document) string {
	var cards *goquery.Selection
	doc.Find(`[class*="product"]`).Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if strings.Contains(strings.ToLower(class), "product-card") ||
			strings.Contains(strings.ToLower(class), "product-item") ||
			strings.Contains(strings.ToLower(class), "product-grid") {
			if cards == nil {
				cards = s.Find(`[class*="product"]`)
			}
		}
	})
	candidates := doc.Find(`[class*="product-card"], [class*="product-item"]`)
	if candidates.Length() < 3 {
		return ""
	}
	var qualifying []string
	candidates.Each(func(_ int, s *goquery.Selection) {
		hasTitle := s.Find("h1,h2,h3,h4,[class*=title],[class*=name]").Length() > 0
		hasPriceOrButton := s.Find(`[class*="price"], button, a[class*="cart"], a[class*="buy"]`).Length() > 0
		if hasTitle && hasPriceOrButton {
			qualifying = append(qualifying, textOf(s))
		}
	})
	if len(qualifying) < 3 {
		return ""
	}
	return strings.Join(qualifying, "\n\n")
}

// ExtractStructuredBody yields {text, element_type, semantic_role} for each
// accepted element.
func ExtractStructuredBody(doc *goquery.Document) []Segment {
	var segments []Segment

	doc.Find("h1,h2,h3,h4,li,p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		tag := goquery.NodeName(s)
		class, _ := s.Attr("class")
		segments = append(segments, Segment{
			Text:         text,
			ElementType:  tag,
			SemanticRole: semanticRole(tag, class),
		})
	})

	// Product listing segments, if a qualifying grid is present.
	doc.Find(`[class*="product-card"], [class*="product-item"]`).Each(func(_ int, s *goquery.Selection) {
		hasTitle := s.Find("h1,h2,h3,h4,[class*=title],[class*=name]").Length() > 0
		hasPriceOrButton := s.Find(`[class*="price"], button, a[class*="cart"], a[class*="buy"]`).Length() > 0
		if hasTitle && hasPriceOrButton {
			segments = append(segments, Segment{
				Text:         textOf(s),
				ElementType:  "product-card",
				SemanticRole: "product_listing",
			})
		}
	})

	return segments
}

// semanticRole infers a structural role from tag and class hints.
func semanticRole(tag, class string) string {
	classLower := strings.ToLower(class)
	switch tag {
	case "h1", "h2":
		return "headline"
	case "h3", "h4":
		return "subheadline"
	case "li":
		return "list_item"
	}
	switch {
	case strings.Contains(classLower, "hero"):
		return "hero"
	case strings.Contains(classLower, "banner"):
		return "banner"
	case strings.Contains(classLower, "tagline"):
		return "tagline"
	case strings.Contains(classLower, "footer"):
		return "footer_text"
	default:
		return "body_text"
	}
}

// ExtractFooterLinks scans <footer> (falling back to all anchors) for the
// first privacy and terms links.
func ExtractFooterLinks(doc *goquery.Document, baseURL string) (privacyURL, termsURL string) {
	scope := doc.Find("footer")
	if scope.Length() == 0 {
		scope = doc.Find("body")
	}

	privacyWords := []string{"privacy", "cookie"}
	termsWords := []string{"term", "conditions"}

	scope.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		lowerHref := strings.ToLower(href)
		if privacyURL == "" && matchesAny(lowerHref, text, privacyWords) {
			privacyURL = resolveURL(baseURL, href)
		}
		if termsURL == "" && matchesAny(lowerHref, text, termsWords) {
			termsURL = resolveURL(baseURL, href)
		}
		return privacyURL == "" || termsURL == ""
	})
	return
}

func matchesAny(href, text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(href, w) || strings.Contains(text, w) {
			return true
		}
	}
	return false
}
