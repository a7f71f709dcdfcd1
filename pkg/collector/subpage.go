package collector

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/allthingstrust/truststack/pkg/classifier"
	"github.com/allthingstrust/truststack/pkg/fetch"
)

// expandSubPages implements the optional brand-owned sub-page expansion
//: extract up to cfg.SubPageMaxLinks same-host internal links from a
// brand-owned parent page, fetch them in parallel, and admit the
// successful ones as additional brand-owned assets subject to the pool cap.
func (c *Collector) expandSubPages(ctx context.Context, state *collectorState, parentURL string, parentPage *fetch.Page, cfg Config, targetBrand, maxPerDomain int) {
	if state.totalCollected() >= cfg.TargetCount {
		return
	}

	links := sameHostLinks(parentURL, parentPage.HTML, cfg.SubPageMaxLinks)
	if len(links) == 0 {
		return
	}

	pages := c.provider.FetchAll(ctx, links, minInt(len(links), cfg.Workers))
	for i, page := range pages {
		if page == nil || page.AccessDenied || page.Body == "" {
			continue
		}
		if len(page.Body) < cfg.MinBrandBodyLength {
			continue
		}
		if looksLikeErrorPage(page.Title) {
			continue
		}
		classified := classifier.Classify(links[i], cfg.Brand)
		result := classifier.Result{SourceType: classified.SourceType, Tier: classified.Tier, Reason: "sub-page of brand-owned parent"}
		asset := assetFromPage(links[i], page, result)
		c.admit(state, asset, true, cfg, targetBrand, targetBrand, maxPerDomain)
	}
}

// sameHostLinks extracts up to max internal links from html that share
// base's host and don't target an excluded path.
func sameHostLinks(base, html string, max int) []string {
	baseURL, err := url.Parse(base)
	if err != nil || html == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		resolved := resolveAgainst(baseURL, href)
		if resolved == "" || seen[resolved] {
			return len(out) < max
		}
		u, err := url.Parse(resolved)
		if err != nil || u.Host != baseURL.Host {
			return len(out) < max
		}
		if isExcludedSubPath(u.Path) {
			return len(out) < max
		}
		seen[resolved] = true
		out = append(out, resolved)
		return len(out) < max
	})
	return out
}

func resolveAgainst(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func isExcludedSubPath(path string) bool {
	lower := strings.ToLower(path)
	for _, excluded := range excludedSubPaths {
		if strings.HasPrefix(lower, excluded) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
