package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveProvider_PaginatesByOffset(t *testing.T) {
	var gotOffsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOffsets = append(gotOffsets, r.URL.Query().Get("offset"))
		resp := braveResponse{}
		resp.Web.Results = []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		}{
			{URL: "https://example.com/a", Title: "A", Description: "a desc"},
			{URL: "https://example.com/b", Title: "B", Description: "b desc"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewBraveProvider(BraveConfig{APIKey: "key", MaxPerRequest: 2, RequestInterval: time.Millisecond})
	p.client = srv.Client()
	// Redirect requests to the test server by overriding via a RoundTripper shim.
	p.client.Transport = rewriteHostTransport{target: srv.URL}

	results, err := p.Search(context.Background(), "trust signals", 4, 0)
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, []string{"0", "2"}, gotOffsets)
}

func TestBraveProvider_NoKeyNoFallbackErrors(t *testing.T) {
	p := NewBraveProvider(BraveConfig{})
	_, err := p.Search(context.Background(), "q", 1, 0)
	assert.Error(t, err)
}

func TestSerperProvider_PaginatesByPage(t *testing.T) {
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		var body serperRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		resp := serperResponse{}
		if body.Page <= 2 {
			resp.Organic = []struct {
				Link    string `json:"link"`
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			}{
				{Link: "https://example.com/1", Title: "One", Snippet: "s1"},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewSerperProvider(SerperConfig{APIKey: "key", RequestInterval: time.Millisecond})
	p.client = srv.Client()
	p.client.Transport = rewriteHostTransport{target: srv.URL}

	results, err := p.Search(context.Background(), "trust signals", 2, 1)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, call)
}

func TestSerperProvider_UnauthorizedStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewSerperProvider(SerperConfig{APIKey: "bad", RequestInterval: time.Millisecond})
	p.client = srv.Client()
	p.client.Transport = rewriteHostTransport{target: srv.URL}

	_, err := p.Search(context.Background(), "q", 5, 1)
	assert.Error(t, err)
}

// rewriteHostTransport redirects every request to target, preserving the
// original path/query, so tests can exercise the real endpoint-construction
// code against an httptest server.
type rewriteHostTransport struct {
	target string
}

func (rt rewriteHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	targetURL, err := req.URL.Parse(rt.target)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = targetURL.Scheme
	req.URL.Host = targetURL.Host
	req.Host = targetURL.Host
	return http.DefaultTransport.RoundTrip(req)
}
