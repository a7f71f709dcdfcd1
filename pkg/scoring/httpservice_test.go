package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allthingstrust/truststack/pkg/models"
)

func TestToWireRequest(t *testing.T) {
	items := []*models.NormalizedContent{
		{URL: "https://acme.com/a", Title: "A", Body: "body text", Modality: models.ModalityText, Language: "en"},
		{URL: "https://acme.com/b", Title: "B", Body: "more text", Modality: models.ModalityVideo},
	}

	req := toWireRequest(items)
	require.Len(t, req.Items, 2)

	assert.Equal(t, "https://acme.com/a", req.Items[0].URL)
	assert.Equal(t, "A", req.Items[0].Title)
	assert.Equal(t, "text", req.Items[0].Modality)
	assert.Equal(t, "en", req.Items[0].Language)

	assert.Equal(t, "video", req.Items[1].Modality)
	assert.Empty(t, req.Items[1].Language)
}

func TestFromWireResponse(t *testing.T) {
	resp := wireScoreResponse{Scores: []wireScoreResponseItem{
		{
			Provenance: 0.8, Verification: 0.7, Transparency: 0.6, Coherence: 0.5, Resonance: 0.4,
			Rationale:    map[string]any{"summary": "solid provenance"},
			Model:        "gpt-4o-mini",
			PromptTokens: 120, CompletionTokens: 40,
		},
	}}

	out := fromWireResponse(resp)
	require.Len(t, out, 1)
	assert.Equal(t, 0.8, out[0].Provenance)
	assert.Equal(t, 0.4, out[0].Resonance)
	assert.Equal(t, "solid provenance", out[0].Rationale["summary"])
	assert.Equal(t, "gpt-4o-mini", out[0].Model)
	assert.Equal(t, 120, out[0].PromptTokens)
}

func TestHTTPService_ScoreBatch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req wireScoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := wireScoreResponse{Scores: make([]wireScoreResponseItem, len(req.Items))}
		for i := range req.Items {
			resp.Scores[i] = wireScoreResponseItem{Provenance: 0.9, Model: "gpt-4o-mini"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := NewHTTPService(HTTPServiceConfig{Endpoint: srv.URL, APIKey: "secret"})
	scores, err := svc.ScoreBatch(context.Background(), []*models.NormalizedContent{
		{URL: "https://acme.com/a", Body: "body"},
	})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0.9, scores[0].Provenance)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.NoError(t, svc.Close())
}

func TestHTTPService_ScoreBatch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewHTTPService(HTTPServiceConfig{Endpoint: srv.URL})
	_, err := svc.ScoreBatch(context.Background(), []*models.NormalizedContent{{URL: "https://acme.com/a"}})
	assert.Error(t, err)
}
