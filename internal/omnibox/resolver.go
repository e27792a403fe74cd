// Package omnibox turns free-form address-bar input into navigable URLs.
package omnibox

import (
	"fmt"
	"net"
	neturl "net/url"
	"regexp"
	"strings"
)

var (
	// urlSchemeRegex matches URL schemes
	urlSchemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

	// domainRegex matches valid domain names
	domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

	// Common top-level domains used to tell bare hostnames from queries
	commonTLDs = map[string]bool{
		"com": true, "org": true, "net": true, "edu": true, "gov": true, "mil": true,
		"int": true, "co": true, "io": true, "ai": true, "ly": true, "me": true,
		"tv": true, "cc": true, "to": true, "app": true, "dev": true, "tech": true,
		"info": true, "biz": true, "xyz": true, "fr": true, "de": true, "uk": true,
		"ca": true, "us": true, "au": true, "jp": true, "cn": true, "in": true,
		"ru": true, "br": true,
	}
)

// Resolver decides whether input is a URL or a search query. Queries are
// expanded through the search engine template, which must contain a %s
// placeholder.
type Resolver struct {
	searchEngine string
}

// NewResolver creates a resolver using the given search engine template.
func NewResolver(searchEngine string) *Resolver {
	return &Resolver{searchEngine: searchEngine}
}

// Resolve returns a navigable URL for the input. Direct URLs pass
// through (gaining https:// when the scheme is missing); everything
// else becomes a search URL. Empty input resolves to itself.
func (r *Resolver) Resolve(input string) string {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return cleaned
	}

	if urlSchemeRegex.MatchString(cleaned) || strings.HasPrefix(cleaned, "about:") {
		return cleaned
	}
	if isDirectURL(cleaned) {
		return "https://" + cleaned
	}

	if r.searchEngine == "" || !strings.Contains(r.searchEngine, "%s") {
		return cleaned
	}
	return fmt.Sprintf(r.searchEngine, neturl.QueryEscape(cleaned))
}

// isDirectURL reports whether scheme-less input still looks like an
// address: a known-TLD domain, an IP, or localhost, optionally with a
// port and path.
func isDirectURL(input string) bool {
	if strings.ContainsAny(input, " \t") {
		return false
	}

	host := input
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "localhost" {
		return true
	}
	if net.ParseIP(host) != nil {
		return true
	}

	if !domainRegex.MatchString(host) || !strings.Contains(host, ".") {
		return false
	}
	tld := host[strings.LastIndex(host, ".")+1:]
	return commonTLDs[strings.ToLower(tld)]
}
