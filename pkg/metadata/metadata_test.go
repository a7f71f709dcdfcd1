package metadata

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

func TestExtract_ChannelFromHostTable(t *testing.T) {
	doc := parse(t, `<html><body></body></html>`)
	e := Extract(doc, "https://www.youtube.com/watch?v=1", "www.youtube.com")
	assert.Equal(t, "youtube", e.Channel)
	assert.Equal(t, "video_platform", e.PlatformType)
	assert.Equal(t, "video", e.Modality)
}

func TestExtract_UnknownHostFallsBackToLabel(t *testing.T) {
	doc := parse(t, `<html><body></body></html>`)
	e := Extract(doc, "https://blog.example.com/post", "blog.example.com")
	assert.Equal(t, "example", e.Channel)
	assert.Equal(t, "website", e.PlatformType)
}

func TestExtract_JSONLDAndMicrodata(t *testing.T) {
	html := `<html><body>
		<script type="application/ld+json">{"@type":"Organization","name":"Acme"}</script>
		<div itemtype="https://schema.org/Product">x</div>
		<div typeof="Product">y</div>
	</body></html>`
	doc := parse(t, html)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	require.Len(t, e.JSONLD, 1)
	assert.Equal(t, "Acme", e.JSONLD[0]["name"])
	assert.True(t, e.HasMicrodata)
	assert.True(t, e.HasRDFa)
}

func TestExtract_CanonicalAndOpenGraph(t *testing.T) {
	html := `<html><head>
		<link rel="canonical" href="https://acme.example.com/real">
		<meta property="og:type" content="video.other">
		<meta property="og:title" content="Hello">
		<meta name="description" content="desc text">
	</head><body></body></html>`
	doc := parse(t, html)
	e := Extract(doc, "https://acme.example.com/dupe", "acme.example.com")
	assert.Equal(t, "https://acme.example.com/real", e.CanonicalURL)
	assert.Equal(t, "Hello", e.OpenGraph["title"])
	assert.Equal(t, "desc text", e.MetaDescription)
	assert.Equal(t, "video", e.Modality)
}

func TestExtract_ProvenanceManifestIndicators(t *testing.T) {
	doc := parse(t, `<html><head><link rel="c2pa-manifest" href="/m.json"></head><body></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.True(t, e.HasProvenanceManifest)
}

func TestExtract_SignificantVisuals_HeroClass(t *testing.T) {
	doc := parse(t, `<html><body><img class="hero-image" src="x.jpg"></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.True(t, e.HasSignificantVisuals)
}

func TestExtract_SignificantVisuals_LogoExcluded(t *testing.T) {
	doc := parse(t, `<html><body><img class="site-logo" width="300" height="300" src="x.png"></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.False(t, e.HasSignificantVisuals)
}

func TestExtract_SignificantVisuals_LargeDimensions(t *testing.T) {
	doc := parse(t, `<html><body><img width="400" height="100" src="x.png"></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.True(t, e.HasSignificantVisuals)
}

func TestExtract_SignificantVisuals_EmbeddedVideo(t *testing.T) {
	doc := parse(t, `<html><body><iframe src="https://www.youtube.com/embed/abc"></iframe></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.True(t, e.HasSignificantVisuals)
}

func TestExtract_NoSignificantVisuals(t *testing.T) {
	doc := parse(t, `<html><body><img class="icon-small" width="20" height="20" src="i.png"></body></html>`)
	e := Extract(doc, "https://acme.example.com/", "acme.example.com")
	assert.False(t, e.HasSignificantVisuals)
}
