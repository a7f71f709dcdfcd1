package fetch

import "net/url"

// resolveURL resolves href against base, returning href verbatim if either
// fails to parse.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
