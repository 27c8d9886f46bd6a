// Package site maps URLs to domains and domains to categories.
package site

import (
	"net/url"
	"strings"
)

// Fallback is the reserved category for domains without an assignment.
const Fallback = "Other"

const (
	wildcardPrefix = "*."
	wwwPrefix      = "www."
)

// ExtractDomain returns the hostname of an http(s) URL with a leading "www."
// stripped. Any other scheme, or a URL that fails to parse, yields false.
func ExtractDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, wwwPrefix)

	if host == "" {
		return "", false
	}

	return host, true
}

// ResolveCategory returns the category assigned to domain. An exact key wins,
// then wildcard keys from the most specific parent ("*.a.b.c") to the least
// specific ("*.c"), then bare parent domains ("b.c"). The fallback is
// returned when nothing matches.
func ResolveCategory(
	domain string,
	assignments map[string]string,
	fallback string,
) string {
	if domain == "" || len(assignments) == 0 {
		return fallback
	}

	if c, ok := assignments[domain]; ok {
		return c
	}

	parts := strings.Split(domain, ".")

	for i := range parts {
		if c, ok := assignments[wildcardPrefix+strings.Join(parts[i:], ".")]; ok {
			return c
		}
	}

	// a lone TLD is never treated as an assignable parent
	for i := 1; i < len(parts)-1; i++ {
		if c, ok := assignments[strings.Join(parts[i:], ".")]; ok {
			return c
		}
	}

	return fallback
}

// Normalize strips the scheme, a leading "www.", any path and a trailing
// slash from a URL or pattern, and lower-cases what remains.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+len("://"):]
	}

	s = strings.TrimPrefix(s, wwwPrefix)
	s = strings.TrimSuffix(s, "/")

	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}

	return s
}

// MatchPattern reports whether target matches a rule URL pattern. A pattern
// of the form "*.example.com" matches example.com and any of its subdomains;
// any other pattern requires the hosts to be equal.
func MatchPattern(target, pattern string) bool {
	host := Normalize(target)
	p := Normalize(pattern)

	if host == "" || p == "" {
		return false
	}

	if suffix, ok := strings.CutPrefix(p, wildcardPrefix); ok {
		return host == suffix || strings.HasSuffix(host, "."+suffix)
	}

	return host == p
}

// ValidPattern reports whether s can be used as a domain key or rule URL
// pattern once normalised.
func ValidPattern(s string) bool {
	p := Normalize(s)
	p = strings.TrimPrefix(p, wildcardPrefix)

	if p == "" || strings.ContainsAny(p, " *?#") {
		return false
	}

	for _, label := range strings.Split(p, ".") {
		if label == "" {
			return false
		}
	}

	return true
}
