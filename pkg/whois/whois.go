// Package whois resolves domain registration facts used by the provenance
// attribute detectors (domain_age, whois_privacy). Mirrors pkg/robots's
// memoising-cache shape: a mutex-protected map keyed by host name (lower-cased, without "www." or port),
// fail-open on lookup/parse errors, success and failure both memoised.
package whois

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// LookupTimeout bounds a single WHOIS network round trip.
const LookupTimeout = 8 * time.Second

var privacyIndicators = []string{
	"privacy", "proxy", "protected", "whoisguard",
	"domains by proxy", "contact privacy", "redacted",
	"privacy protect", "domain protection",
}

// Record is the normalized subset of WHOIS data the detectors consume.
type Record struct {
	Domain            string
	Registrar         string
	CreationDate      *time.Time
	ExpirationDate    *time.Time
	RegistrantOrg     string
	RegistrantCountry string
	DomainAgeYears    float64
	HasDomainAge      bool
	PrivacyEnabled    bool
	OrgVisible        bool
	Err               error
}

// Client looks up and caches WHOIS records per host name. rawLookup
// and parse are overridden in tests to avoid real network WHOIS queries.
type Client struct {
	mu        sync.RWMutex
	records   map[string]Record
	rawLookup func(domain string) (string, error)
	parse     func(raw string) (whoisparser.WhoisInfo, error)
}

// New creates an empty WHOIS lookup cache backed by the real network lookup.
func New() *Client {
	return &Client{
		records:   make(map[string]Record),
		rawLookup: func(domain string) (string, error) {
			return whois.NewClient().SetTimeout(LookupTimeout).Whois(domain)
		},
		parse:     whoisparser.Parse,
	}
}

// Lookup returns the WHOIS record for rawURLOrDomain, memoising both
// successful and failed lookups so a flaky registrar never gets re-queried
// within a run.
func (c *Client) Lookup(ctx context.Context, rawURLOrDomain string) Record {
	domain := extractDomain(rawURLOrDomain)
	if domain == "" {
		return Record{Domain: rawURLOrDomain, Err: errInvalidDomain}
	}

	c.mu.RLock()
	cached, ok := c.records[domain]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	rec := c.fetch(ctx, domain)
	c.mu.Lock()
	c.records[domain] = rec
	c.mu.Unlock()
	return rec
}

func (c *Client) fetch(ctx context.Context, domain string) Record {
	_, cancel := context.WithTimeout(ctx, LookupTimeout)
	defer cancel()

	raw, err := c.rawLookup(domain)
	if err != nil {
		slog.Debug("whois: lookup failed", "domain", domain, "error", err)
		return Record{Domain: domain, Err: err}
	}

	parsed, err := c.parse(raw)
	if err != nil {
		slog.Debug("whois: parse failed", "domain", domain, "error", err)
		return Record{Domain: domain, Err: err}
	}

	rec := Record{Domain: domain}
	if parsed.Registrar != nil {
		rec.Registrar = parsed.Registrar.Name
	}
	if parsed.Registrant != nil {
		rec.RegistrantOrg = parsed.Registrant.Organization
		rec.RegistrantCountry = parsed.Registrant.Country
	}
	if parsed.Domain != nil {
		rec.CreationDate = parsed.Domain.CreatedDateInTime
		rec.ExpirationDate = parsed.Domain.ExpirationDateInTime
	}

	if rec.CreationDate != nil {
		rec.DomainAgeYears = roundTo(time.Since(*rec.CreationDate).Hours()/24/365.25, 1)
		rec.HasDomainAge = true
	}

	org := strings.ToLower(rec.RegistrantOrg)
	for _, ind := range privacyIndicators {
		if strings.Contains(org, ind) {
			rec.PrivacyEnabled = true
			break
		}
	}
	rec.OrgVisible = !rec.PrivacyEnabled && rec.RegistrantOrg != ""

	return rec
}

func extractDomain(rawURLOrDomain string) string {
	domain := rawURLOrDomain
	if strings.Contains(rawURLOrDomain, "://") {
		if u, err := url.Parse(rawURLOrDomain); err == nil {
			domain = u.Host
		}
	}
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.Index(domain, ":"); i >= 0 {
		domain = domain[:i]
	}
	return strings.ToLower(domain)
}

func roundTo(v float64, places int) float64 {
	mult := 1.0
	for i := 0; i < places; i++ {
		mult *= 10
	}
	return float64(int(v*mult+0.5)) / mult
}

var errInvalidDomain = invalidDomainError{}

type invalidDomainError struct{}

func (invalidDomainError) Error() string { return "whois: empty or invalid domain" }
