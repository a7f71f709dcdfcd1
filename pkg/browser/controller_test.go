package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These tests exercise lifecycle and request-rejection behavior that does
// not require an actual Chromium binary; full navigation needs a real
// browser and is not exercised by these tests.

func TestController_FetchBeforeStartReturnsNotStarted(t *testing.T) {
	c := New(true, nil)
	_, err := c.FetchPage(context.Background(), "https://example.com", "ua", false, 0)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestController_CloseBeforeStartIsNoop(t *testing.T) {
	c := New(true, nil)
	assert.Equal(t, StateStopped, c.State())
	c.Close()
	assert.Equal(t, StateStopped, c.State())
}

func TestLooksLikeAccessDenied(t *testing.T) {
	assert.True(t, looksLikeAccessDenied("Access Denied", ""))
	assert.True(t, looksLikeAccessDenied("", "<title>403 Forbidden</title>"))
	assert.True(t, looksLikeAccessDenied("", "cloudflare ray id security check"))
	assert.False(t, looksLikeAccessDenied("Welcome", "<body>hello</body>"))
}
