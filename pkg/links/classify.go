// Package links classifies candidate file URLs extracted from search
// result pages and persists link lists to disk.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// A path ending in a dot followed by 2-5 alphanumeric characters
	// looks like a direct file link.
	extAtEnd = regexp.MustCompile(`\.[a-z0-9]{2,5}$`)

	// The extension may also sit immediately before query parameters
	// or a fragment, e.g. /file.pdf?download=true.
	extBeforeDelim = regexp.MustCompile(`\.[a-z0-9]{2,5}[?#]`)

	// Search results wrap outbound links as /url?q=<target> or
	// /url?url=<target>.
	redirectParam = regexp.MustCompile(`[?&](?:q|url)=([^&]+)`)
)

// IsFileLink reports whether the URL appears to reference a
// downloadable file. This is a heuristic based on the extension-like
// token in the path, not a content check.
func IsFileLink(raw string) bool {
	lower := strings.ToLower(raw)

	parsed, err := url.Parse(lower)
	if err != nil {
		return false
	}

	path := parsed.Path
	if path == "" || strings.HasSuffix(path, "/") {
		return false
	}

	if extAtEnd.MatchString(path) {
		return true
	}
	return extBeforeDelim.MatchString(lower)
}

// Normalize unwraps a search-engine redirect URL to its target and
// passes absolute http(s) URLs through unchanged. The second return
// value is false for relative or internal navigation links, which
// are discarded.
func Normalize(raw string) (string, bool) {
	if strings.Contains(raw, "/url?q=") || strings.Contains(raw, "/url?url=") {
		if m := redirectParam.FindStringSubmatch(raw); m != nil {
			if decoded, err := url.PathUnescape(m[1]); err == nil {
				return decoded, true
			}
			return m[1], true
		}
	}

	if strings.HasPrefix(raw, "http") {
		return raw, true
	}

	return "", false
}
