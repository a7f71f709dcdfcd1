package fetch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractBody_ArticlePreferred(t *testing.T) {
	doc := parse(t, `<html><body><div class="content">short</div><article>`+
		strings.Repeat("word ", 10)+`</article></body></html>`)
	body := ExtractBody(doc)
	assert.Contains(t, body, "word")
}

func TestExtractBody_ContentClassFallback(t *testing.T) {
	html := `<html><body><div class="post-content">` + strings.Repeat("lorem ipsum ", 30) + `</div></body></html>`
	doc := parse(t, html)
	body := ExtractBody(doc)
	assert.GreaterOrEqual(t, len(body), 150)
}

func TestExtractFooterLinks(t *testing.T) {
	html := `<html><body><footer>
		<a href="/privacy-policy">Privacy Policy</a>
		<a href="/terms-of-service">Terms & Conditions</a>
	</footer></body></html>`
	doc := parse(t, html)
	privacy, terms := ExtractFooterLinks(doc, "https://example.com/page")
	assert.Equal(t, "https://example.com/privacy-policy", privacy)
	assert.Equal(t, "https://example.com/terms-of-service", terms)
}

func TestExtractVerificationBadge_InstagramVerified(t *testing.T) {
	html := `<html><body><svg aria-label="Verified"><path fill="#0095f6"/></svg></body></html>`
	doc := parse(t, html)
	badge := ExtractVerificationBadge(doc, "instagram.com")
	assert.True(t, badge.Verified)
}

func TestExtractVerificationBadge_TwitterVerified(t *testing.T) {
	html := `<html><body><span data-testid="icon-verified"></span></body></html>`
	doc := parse(t, html)
	badge := ExtractVerificationBadge(doc, "x.com")
	assert.True(t, badge.Verified)
}

func TestExtractVerificationBadge_LinkedInVerified(t *testing.T) {
	html := `<html><body><svg><use href="#verified-medium"/></svg></body></html>`
	doc := parse(t, html)
	badge := ExtractVerificationBadge(doc, "linkedin.com")
	assert.True(t, badge.Verified)
}

func TestExtractVerificationBadge_Unverified(t *testing.T) {
	doc := parse(t, `<html><body><p>just a profile</p></body></html>`)
	assert.False(t, ExtractVerificationBadge(doc, "instagram.com").Verified)
	assert.False(t, ExtractVerificationBadge(doc, "x.com").Verified)
	assert.False(t, ExtractVerificationBadge(doc, "linkedin.com").Verified)
}

func TestExtractStructuredBody_Roles(t *testing.T) {
	html := `<html><body><h1>Big Headline</h1><h3>Sub</h3><li>item one</li></body></html>`
	doc := parse(t, html)
	segs := ExtractStructuredBody(doc)
	roles := map[string]bool{}
	for _, s := range segs {
		roles[s.SemanticRole] = true
	}
	assert.True(t, roles["headline"])
	assert.True(t, roles["subheadline"])
	assert.True(t, roles["list_item"])
}
