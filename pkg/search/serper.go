package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// SerperConfig configures the Serper provider.
type SerperConfig struct {
	APIKey          string
	Timeout         time.Duration
	RequestInterval time.Duration // default 1.0s
}

// serperResultsPerPage is fixed by the Serper API; unlike Brave it cannot be tuned per
// request, so pagination always advances by whole pages.
const serperResultsPerPage = 10

// SerperProvider queries the Serper.dev Google-search proxy.
type SerperProvider struct {
	cfg     SerperConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewSerperProvider constructs a SerperProvider.
func NewSerperProvider(cfg SerperConfig) *SerperProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = time.Second
	}
	return &SerperProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
	}
}

type serperRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	Page int    `json:"page"`
}

type serperResponse struct {
	Organic []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search implements Provider. start is interpreted as a 1-based page number;
// Serper has no per-request count knob, so size is satisfied by requesting
// whole additional pages of serperResultsPerPage each.
func (p *SerperProvider) Search(ctx context.Context, query string, size, startPage int) ([]Result, error) {
	if startPage < 1 {
		startPage = 1
	}

	var out []Result
	page := startPage
	for len(out) < size {
		batch, err := p.searchPage(ctx, query, page)
		if err != nil {
			return out, err
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
		page++
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func (p *SerperProvider) searchPage(ctx context.Context, query string, page int) ([]Result, error) {
	const endpoint = "https://google.serper.dev/search"
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(serperRequest{Q: query, Num: serperResultsPerPage, Page: page})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("serper: auth/quota error, status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper: unexpected status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		out = append(out, Result{URL: r.Link, Title: r.Title, Snippet: r.Snippet})
	}
	return out, nil
}
