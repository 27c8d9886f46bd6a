package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		url    string
		domain string
		ok     bool
	}{
		{"https://www.example.com/path?q=1", "example.com", true},
		{"http://Sub.Example.com:8080/", "sub.example.com", true},
		{"https://news.ycombinator.com", "news.ycombinator.com", true},
		{"chrome://extensions", "", false},
		{"about:blank", "", false},
		{"file:///etc/hosts", "", false},
		{"moz-extension://abc/blocked.html", "", false},
		{"https://", "", false},
		{"::not a url", "", false},
	}

	for _, tc := range cases {
		domain, ok := ExtractDomain(tc.url)

		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.domain, domain, tc.url)
	}
}

func TestResolveCategoryPrecedence(t *testing.T) {
	assignments := map[string]string{
		"*.example.com":   "Social",
		"sub.example.com": "Work",
		"github.com":      "Work",
		"*.co.uk":         "News",
	}

	cases := []struct {
		domain   string
		expected string
	}{
		{"sub.example.com", "Work"},
		{"other.example.com", "Social"},
		{"example.com", "Social"},
		{"deep.sub.example.com", "Social"},
		{"gist.github.com", "Work"},
		{"bbc.co.uk", "News"},
		{"unknown.org", Fallback},
		{"", Fallback},
	}

	for _, tc := range cases {
		got := ResolveCategory(tc.domain, assignments, Fallback)

		assert.Equal(t, tc.expected, got, tc.domain)
		// resolution is a pure function of its inputs
		assert.Equal(t, got, ResolveCategory(tc.domain, assignments, Fallback))
	}
}

func TestResolveCategoryIgnoresBareTLD(t *testing.T) {
	assignments := map[string]string{"com": "Weird"}

	assert.Equal(t, Fallback, ResolveCategory("example.com", assignments, Fallback))
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		target  string
		pattern string
		match   bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "https://www.example.com/", true},
		{"sub.example.com", "example.com", false},
		{"sub.example.com", "*.example.com", true},
		{"example.com", "*.example.com", true},
		{"notexample.com", "*.example.com", false},
		{"x.com", "X.com", true},
		{"x.com", "", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.match, MatchPattern(tc.target, tc.pattern), "%s ~ %s", tc.target, tc.pattern)
	}
}

func TestValidPattern(t *testing.T) {
	assert.True(t, ValidPattern("example.com"))
	assert.True(t, ValidPattern("*.example.com"))
	assert.True(t, ValidPattern("https://www.example.com/"))
	assert.False(t, ValidPattern(""))
	assert.False(t, ValidPattern("*."))
	assert.False(t, ValidPattern("exa mple.com"))
	assert.False(t, ValidPattern("a..b"))
}
