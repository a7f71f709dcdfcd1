package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// BraveAuthMode selects how the API key is presented, per BRAVE_API_AUTH.
type BraveAuthMode string

const (
	BraveAuthXAPIKey           BraveAuthMode = "x-api-key"
	BraveAuthBearer            BraveAuthMode = "bearer"
	BraveAuthSubscriptionToken BraveAuthMode = "subscription-token"
	BraveAuthQueryParam        BraveAuthMode = "query-param"
	BraveAuthBoth              BraveAuthMode = "both"
)

// BraveConfig configures the Brave provider.
type BraveConfig struct {
	APIKey          string
	AuthMode        BraveAuthMode
	MaxPerRequest   int // default 20
	Timeout         time.Duration
	AllowHTMLFallback bool
	RequestInterval time.Duration // default 1.0s
}

// BraveProvider queries the Brave Search API, falling back to HTML scraping
// only when no API key is present or fallback is explicitly enabled.
type BraveProvider struct {
	cfg     BraveConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewBraveProvider constructs a BraveProvider.
func NewBraveProvider(cfg BraveConfig) *BraveProvider {
	if cfg.MaxPerRequest <= 0 {
		cfg.MaxPerRequest = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = time.Second
	}
	return &BraveProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements Provider. It paginates by offset, re-requesting until
// size is satisfied or a batch returns zero results.
func (p *BraveProvider) Search(ctx context.Context, query string, size, startOffset int) ([]Result, error) {
	if p.cfg.APIKey == "" {
		if !p.cfg.AllowHTMLFallback {
			return nil, fmt.Errorf("brave: no API key configured and HTML fallback disabled")
		}
		return p.searchHTML(ctx, query, size)
	}

	var out []Result
	offset := startOffset
	for len(out) < size {
		batchSize := size - len(out)
		if batchSize > p.cfg.MaxPerRequest {
			batchSize = p.cfg.MaxPerRequest
		}
		batch, err := p.searchAPI(ctx, query, batchSize, offset)
		if err != nil {
			return out, err
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
		offset += len(batch)
	}
	return out, nil
}

func (p *BraveProvider) searchAPI(ctx context.Context, query string, count, offset int) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, _ := url.Parse("https://api.search.brave.com/res/v1/web/search")
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))
	q.Set("offset", strconv.Itoa(offset))
	if p.cfg.AuthMode == BraveAuthQueryParam || p.cfg.AuthMode == BraveAuthBoth {
		q.Set("key", p.cfg.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	switch p.cfg.AuthMode {
	case BraveAuthXAPIKey, "":
		req.Header.Set("X-Subscription-Token", p.cfg.APIKey)
	case BraveAuthBearer:
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	case BraveAuthSubscriptionToken:
		req.Header.Set("X-Subscription-Token", p.cfg.APIKey)
	case BraveAuthBoth:
		req.Header.Set("X-Subscription-Token", p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("brave: auth/quota error, status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave: unexpected status %d", resp.StatusCode)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		out = append(out, Result{URL: r.URL, Title: r.Title, Snippet: r.Description})
	}
	return out, nil
}

// braveSelectorLadder is tried in order against the HTML results page.
var braveSelectorLadder = []string{
	`#results .snippet a.heading-serpresult`,
	`.snippet-title a`,
	`#results a[href]`,
}

func (p *BraveProvider) searchHTML(ctx context.Context, query string, size int) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, _ := url.Parse("https://search.brave.com/search")
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, sel := range braveSelectorLadder {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok || !strings.HasPrefix(href, "http") {
				return len(out) < size
			}
			out = append(out, Result{URL: href, Title: strings.TrimSpace(s.Text())})
			return len(out) < size
		})
		if len(out) > 0 {
			break
		}
	}
	if len(out) == 0 {
		// Final fallback: any anchor on the page.
		doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if ok && strings.HasPrefix(href, "http") {
				out = append(out, Result{URL: href, Title: strings.TrimSpace(s.Text())})
			}
			return len(out) < size
		})
	}
	return out, nil
}
