package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/dataminer/internal/dedup"
	"github.com/nao1215/dataminer/internal/fetcher"
	"github.com/nao1215/dataminer/internal/model"
)

// Default settings used when no option overrides them.
const (
	DefaultMaxPages = 1000
	DefaultDelay    = 1 * time.Second
	DefaultWorkers  = 10
)

// ErrInvalidURL is returned for seed or batch inputs that are not absolute
// http(s) URLs with a host.
var ErrInvalidURL = errors.New("invalid URL")

// ErrDuplicateContent is the error a Store returns from PutPageRecord when
// the fingerprint is already taken.
var ErrDuplicateContent = dedup.ErrDuplicateContent

// Store persists URL statuses and page records.
//
// PutURLStatus is an idempotent upsert that never overwrites a terminal
// status. PutPageRecord must atomically check and reserve the record's
// fingerprint and return an error wrapping ErrDuplicateContent when it is
// already stored. Implementations must be safe for concurrent use.
type Store interface {
	PutURLStatus(ctx context.Context, url string, status model.URLStatus) error
	PutPageRecord(ctx context.Context, record *model.PageRecord) error
	ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error)
}

// Fetcher retrieves a single URL. *fetcher.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

// Crawler runs crawl and batch sessions against one Fetcher and Store.
// A Crawler holds configuration only, so one value can run many sessions.
type Crawler struct {
	fetcher Fetcher
	store   Store
	dedup   *dedup.Deduplicator
	logger  *slog.Logger

	// maxPages caps visited pages per CrawlSite session.
	maxPages int

	// delay is the minimum interval between CrawlSite fetches.
	delay time.Duration

	// workers is the BatchFetch concurrency width.
	workers int

	// sameHost restricts CrawlSite to links on the seed's host.
	sameHost bool

	// ignorePatterns are URL path globs never followed.
	ignorePatterns []string

	// followPatterns, when set, are the only URL path globs followed.
	followPatterns []string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxPages sets the page cap of a site crawl. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithDelay sets the politeness delay between site crawl fetches.
// Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithWorkers sets the batch concurrency width. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithSameHost restricts site crawls to the seed URL's host.
func WithSameHost(enabled bool) Option {
	return func(c *Crawler) {
		c.sameHost = enabled
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
func WithFollowPatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.followPatterns = patterns
	}
}

// New creates a Crawler.
func New(f Fetcher, store Store, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:  f,
		store:    store,
		dedup:    dedup.New(store),
		maxPages: DefaultMaxPages,
		delay:    DefaultDelay,
		workers:  DefaultWorkers,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// IsValidURL reports whether rawURL is an absolute http or https URL with
// a non-empty host.
func IsValidURL(rawURL string) bool {
	if strings.TrimSpace(rawURL) != rawURL || rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}
