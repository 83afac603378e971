package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// shouldFollow reports whether a discovered link is queued during a site
// crawl: it must be a valid URL, on the seed's host when the same-host
// restriction is on, and allowed by the ignore and follow patterns.
func (c *Crawler) shouldFollow(seed *url.URL, link string) bool {
	if !IsValidURL(link) {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if c.sameHost && !strings.EqualFold(u.Hostname(), seed.Hostname()) {
		return false
	}
	return c.allowedPath(u)
}

// allowedPath applies ignore and follow patterns to the URL path.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, follow it
func (c *Crawler) allowedPath(u *url.URL) bool {
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range c.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(c.followPatterns) == 0 {
		return true
	}
	for _, pattern := range c.followPatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match everything below a prefix
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users/1"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Bare filename patterns such as "report-*.html" match the last segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
