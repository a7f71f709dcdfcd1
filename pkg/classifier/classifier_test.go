package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allthingstrust/truststack/pkg/models"
)

func baseConfig() BrandConfig {
	return BrandConfig{
		BrandDomains:    []string{"nike.com"},
		BrandSubdomains: []string{"news.nike.com"},
		BrandSocialHandles: map[string][]string{
			"instagram.com": {"nike"},
		},
	}
}

func TestClassify_BrandOwnedDomain(t *testing.T) {
	res := Classify("https://www.nike.com/running", baseConfig())
	assert.Equal(t, models.OwnershipBrandOwned, res.SourceType)
	assert.Equal(t, models.TierPrimaryWebsite, res.Tier)
}

func TestClassify_BrandSocialHandle(t *testing.T) {
	res := Classify("https://instagram.com/nike/", baseConfig())
	assert.Equal(t, models.OwnershipBrandOwned, res.SourceType)
	assert.Equal(t, models.TierBrandSocial, res.Tier)
}

func TestClassify_NonBrandSocialHandle(t *testing.T) {
	res := Classify("https://instagram.com/someoneelse/", baseConfig())
	assert.Equal(t, models.OwnershipThirdParty, res.SourceType)
}

func TestClassify_ThirdPartyNews(t *testing.T) {
	res := Classify("https://www.reuters.com/article", baseConfig())
	assert.Equal(t, models.OwnershipThirdParty, res.SourceType)
	assert.Equal(t, models.TierNewsMedia, res.Tier)
}

func TestClassify_UnparsableURL(t *testing.T) {
	res := Classify("::not a url::", baseConfig())
	assert.Equal(t, models.OwnershipUnknown, res.SourceType)
}

func TestIsBrandControlled(t *testing.T) {
	assert.True(t, IsBrandControlled(BrandConfig{BrandOwnedRatio: 0.8}))
	assert.False(t, IsBrandControlled(BrandConfig{BrandOwnedRatio: 0.79}))
}
