package config

import (
	"net"
	"strings"
	"time"
)

// SiteConfig holds settings for a single host.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site. An explicit 0
	// fetches the seed only; when absent the global CrawlDepth is used.
	Depth *int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL path globs skipped during crawling.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path globs followed during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// CrawlSection holds site crawl settings.
// Pointer fields distinguish an explicit zero from an absent key.
type CrawlSection struct {
	Depth    *int           `yaml:"depth,omitempty"`
	MaxPages int            `yaml:"maxPages,omitempty"`
	Delay    *time.Duration `yaml:"delay,omitempty"`
	SameHost *bool          `yaml:"sameHost,omitempty"`
}

// FetchSection holds HTTP client settings.
type FetchSection struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
}

// BatchSection holds batch fetch settings.
type BatchSection struct {
	Workers int `yaml:"workers,omitempty"`
}

// StorageSection holds database and export locations.
type StorageSection struct {
	DBDir  string `yaml:"dbDir,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// File represents the structure of the .dataminer configuration file.
type File struct {
	Crawl   CrawlSection   `yaml:"crawl,omitempty"`
	Fetch   FetchSection   `yaml:"fetch,omitempty"`
	Batch   BatchSection   `yaml:"batch,omitempty"`
	Storage StorageSection `yaml:"storage,omitempty"`

	// Defaults contains site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (e.g., "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the
// defaults. Host matching is case-insensitive. A host:port without its own
// entry falls back to the entry for the host name.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.lookupSite(host)
	if !ok {
		if name, _, err := net.SplitHostPort(host); err == nil {
			siteConfig, ok = cf.lookupSite(name)
		}
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Depth != nil {
		result.Depth = siteConfig.Depth
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

func (cf *File) lookupSite(host string) (SiteConfig, bool) {
	if sc, ok := cf.Sites[host]; ok {
		return sc, true
	}
	for name, sc := range cf.Sites {
		if strings.EqualFold(name, host) {
			return sc, true
		}
	}
	return SiteConfig{}, false
}
