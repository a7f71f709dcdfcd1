// Package search provides a uniform interface over the Brave and Serper
// search backends.
package search

import "context"

// Result is one normalised search hit.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Provider is implemented by BraveProvider and SerperProvider.
type Provider interface {
	// Search returns up to size results starting at startOffset (Brave) or
	// startPage (Serper); the caller advances the cursor by len(results)
	// each call.
	Search(ctx context.Context, query string, size, start int) ([]Result, error)
}
