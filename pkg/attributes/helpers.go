package attributes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/allthingstrust/truststack/pkg/models"
)

func present(dim models.Dimension, label string, value, confidence float64, evidence string) *models.DetectedAttribute {
	return &models.DetectedAttribute{
		Dimension:  dim,
		Label:      label,
		Value:      value,
		Confidence: confidence,
		Evidence:   evidence,
		Status:     models.AttributeStatusPresent,
	}
}

func absent(dim models.Dimension, label string, value, confidence float64, reason models.AttributeReason, evidence string) *models.DetectedAttribute {
	return &models.DetectedAttribute{
		Dimension:  dim,
		Label:      label,
		Value:      value,
		Confidence: confidence,
		Evidence:   evidence,
		Status:     models.AttributeStatusAbsent,
		Reason:     reason,
	}
}

func partial(dim models.Dimension, label string, value, confidence float64, evidence string) *models.DetectedAttribute {
	return &models.DetectedAttribute{
		Dimension:  dim,
		Label:      label,
		Value:      value,
		Confidence: confidence,
		Evidence:   evidence,
		Status:     models.AttributeStatusPartial,
	}
}

// splitMainFooter partitions structured body text into "main" content and
// footer/header text, so disclosure scans can weight footer matches higher.
func splitMainFooter(c *models.NormalizedContent) (main, footer string) {
	if len(c.StructuredBody) == 0 {
		return c.Body, ""
	}
	var mainParts, footerParts []string
	for _, seg := range c.StructuredBody {
		if seg.SemanticRole == models.RoleFooterText {
			footerParts = append(footerParts, seg.Text)
		} else {
			mainParts = append(mainParts, seg.Text)
		}
	}
	return strings.Join(mainParts, " "), strings.Join(footerParts, " ")
}

func metaString(c *models.NormalizedContent, key string) string {
	if c.Metadata == nil {
		return ""
	}
	v, _ := c.Metadata[key].(string)
	return v
}

func metaBool(c *models.NormalizedContent, key string) bool {
	if c.Metadata == nil {
		return false
	}
	v, _ := c.Metadata[key].(bool)
	return v
}

func metaFloat(c *models.NormalizedContent, key string) (float64, bool) {
	if c.Metadata == nil {
		return 0, false
	}
	v, ok := c.Metadata[key].(float64)
	return v, ok
}

// jsonLDHasPersonOrOrgAuthor scans the collected JSON-LD blocks for an
// author/creator whose @type is Person or Organization.
func jsonLDHasPersonOrOrgAuthor(c *models.NormalizedContent) bool {
	blocks, _ := c.Metadata["json_ld"].([]map[string]any)
	for _, block := range blocks {
		for _, key := range []string{"author", "creator"} {
			v, ok := block[key]
			if !ok {
				continue
			}
			if authorEntryIsPersonOrOrg(v) {
				return true
			}
		}
	}
	return false
}

func authorEntryIsPersonOrOrg(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		t, _ := val["@type"].(string)
		return t == "Person" || t == "Organization"
	case []any:
		for _, item := range val {
			if authorEntryIsPersonOrOrg(item) {
				return true
			}
		}
	}
	return false
}

var aboutPhrases = regexp.MustCompile(`(?i)about us|our story|who we are|founded in`)

func weakAboutMention(body string) bool {
	prefix := body
	if len(prefix) > 500 {
		prefix = prefix[:500]
	}
	return aboutPhrases.MatchString(prefix)
}

var policyPhrases = regexp.MustCompile(`(?i)privacy policy|your privacy choices|how we (use|collect) your (data|information)`)

func looksLikePolicyURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, "/privacy") || strings.Contains(lower, "/legal")
}

var sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)

// medianWordsPerSentence tokenises body into sentences on terminal
// punctuation and returns the median word count for the
// readability detector contract.
func medianWordsPerSentence(body string) float64 {
	sentences := sentenceSplit.Split(body, -1)
	var counts []int
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		counts = append(counts, len(words))
	}
	if len(counts) == 0 {
		return 0
	}
	sort.Ints(counts)
	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		return float64(counts[mid])
	}
	return float64(counts[mid-1]+counts[mid]) / 2
}

// looksLikeListOrNav reports whether content is predominantly list/nav
// material (many short lines, high newline density) and should be skipped
// by readability scoring.
func looksLikeListOrNav(c *models.NormalizedContent) bool {
	if len(c.StructuredBody) > 0 {
		listCount := 0
		for _, seg := range c.StructuredBody {
			if seg.SemanticRole == models.RoleListItem {
				listCount++
			}
		}
		if float64(listCount)/float64(len(c.StructuredBody)) > 0.6 {
			return true
		}
	}
	lines := strings.Split(c.Body, "\n")
	var nonEmpty, words int
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		words += len(strings.Fields(line))
	}
	return nonEmpty >= 5 && float64(words)/float64(nonEmpty) < 10
}

var dataClaimMarkers = regexp.MustCompile(`(?i)\d+%|\$\d|study (found|shows)|research (shows|found)|survey found|according to`)

func hasDataClaimMarkers(body string) bool {
	return dataClaimMarkers.MatchString(body)
}

var citationMarkers = regexp.MustCompile(`(?i)source:|according to|\[\d+\]|https?://`)

func hasCitationMarkers(body string) bool {
	return citationMarkers.MatchString(body)
}

var aiArtifactPhrases = regexp.MustCompile(`(?i)as an ai language model|i am an ai|as a language model|i'm an ai`)

var disclosurePhrases = regexp.MustCompile(`(?i)written by a human|human[- ]reviewed|ai[- ]generated|generated (using|with|by) ai|human[- ]written`)

func isKnownSocialHost(host string) bool {
	switch strings.TrimPrefix(strings.ToLower(host), "www.") {
	case "instagram.com", "facebook.com", "twitter.com", "x.com", "linkedin.com", "tiktok.com", "youtube.com":
		return true
	}
	return false
}

func hostOfURL(rawURL string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(rawURL, prefix) {
			rest := strings.TrimPrefix(rawURL, prefix)
			if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
				return rest[:idx]
			}
			return rest
		}
	}
	return rawURL
}
