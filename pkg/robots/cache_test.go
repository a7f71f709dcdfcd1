package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allthingstrust/truststack/pkg/ratelimit"
)

func TestCache_AllowsAndDisallows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	c := New(ratelimit.New(time.Millisecond))
	require.True(t, c.IsAllowed(context.Background(), srv.URL+"/public", "test-agent"))
	require.False(t, c.IsAllowed(context.Background(), srv.URL+"/private/page", "test-agent"))

	// Memoised: second call for the same host hits the cache, not the server.
	require.True(t, c.IsAllowed(context.Background(), srv.URL+"/public", "test-agent"))
}

func TestCache_FailsOpenOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(ratelimit.New(time.Millisecond))
	assert.True(t, c.IsAllowed(context.Background(), srv.URL+"/anything", "test-agent"))
}

func TestCache_FailsOpenOnUnreachableHost(t *testing.T) {
	c := New(ratelimit.New(time.Millisecond))
	assert.True(t, c.IsAllowed(context.Background(), "http://127.0.0.1:1/x", "test-agent"))
}
