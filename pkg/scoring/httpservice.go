package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/allthingstrust/truststack/pkg/models"
)

// HTTPServiceConfig configures the default JSON/HTTP scoring backend.
type HTTPServiceConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPService implements Service by calling the external scoring service
// over JSON/HTTP.
type HTTPService struct {
	cfg    HTTPServiceConfig
	client *http.Client
}

// NewHTTPService creates a new scoring client for the configured endpoint.
// Uses plaintext HTTP as configured; the scoring service is expected to
// run as a sidecar or on localhost. If the service is ever deployed across
// a network boundary, the endpoint must be upgraded to TLS.
func NewHTTPService(cfg HTTPServiceConfig) *HTTPService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPService{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// ScoreBatch implements Service.
func (s *HTTPService) ScoreBatch(ctx context.Context, items []*models.NormalizedContent) ([]*ContentScores, error) {
	payload, err := json.Marshal(toWireRequest(items))
	if err != nil {
		return nil, fmt.Errorf("encoding score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ScoreBatch call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service: unexpected status %d", resp.StatusCode)
	}

	var parsed wireScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding score response: %w", err)
	}
	return fromWireResponse(parsed), nil
}

// Close releases the client's idle connections.
func (s *HTTPService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// ────────────────────────────────────────────────────────────
// Wire conversion helpers
// ────────────────────────────────────────────────────────────

type wireScoreRequestItem struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Modality string `json:"modality"`
	Language string `json:"language"`
}

type wireScoreRequest struct {
	Items []wireScoreRequestItem `json:"items"`
}

type wireScoreResponseItem struct {
	Provenance       float64        `json:"provenance"`
	Verification     float64        `json:"verification"`
	Transparency     float64        `json:"transparency"`
	Coherence        float64        `json:"coherence"`
	Resonance        float64        `json:"resonance"`
	Rationale        map[string]any `json:"rationale"`
	VisualAnalysis   map[string]any `json:"visual_analysis,omitempty"`
	Model            string         `json:"model"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
}

type wireScoreResponse struct {
	Scores []wireScoreResponseItem `json:"scores"`
}

func toWireRequest(items []*models.NormalizedContent) wireScoreRequest {
	req := wireScoreRequest{Items: make([]wireScoreRequestItem, len(items))}
	for i, item := range items {
		req.Items[i] = wireScoreRequestItem{
			URL:      item.URL,
			Title:    item.Title,
			Body:     item.Body,
			Modality: string(item.Modality),
			Language: item.Language,
		}
	}
	return req
}

func fromWireResponse(resp wireScoreResponse) []*ContentScores {
	out := make([]*ContentScores, len(resp.Scores))
	for i, s := range resp.Scores {
		out[i] = &ContentScores{
			Provenance:       s.Provenance,
			Verification:     s.Verification,
			Transparency:     s.Transparency,
			Coherence:        s.Coherence,
			Resonance:        s.Resonance,
			Rationale:        s.Rationale,
			VisualAnalysis:   s.VisualAnalysis,
			Model:            s.Model,
			PromptTokens:     s.PromptTokens,
			CompletionTokens: s.CompletionTokens,
		}
	}
	return out
}
