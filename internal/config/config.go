package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "dataminer"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth follows links two levels below the seed page.
	DefaultCrawlDepth = 2

	// DefaultMaxPages is the maximum number of pages visited per site crawl.
	DefaultMaxPages = 1000

	// DefaultWorkers is the number of concurrent fetches in batch mode.
	DefaultWorkers = 10

	// DefaultCrawlDelay is the delay between requests during a site crawl.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent is a desktop browser identity.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMaxBodySize limits how much of each response is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultOutputFile is the export file name used when none is given.
	DefaultOutputFile = "mined_data.json"
)

// Config holds all configuration options for dataminer.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed down explicitly.
type Config struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// CrawlDepth is the maximum link depth followed from the seed page.
	CrawlDepth int

	// MaxPages caps the pages visited by one site crawl.
	MaxPages int

	// Workers is the batch fetch concurrency width.
	Workers int

	// CrawlDelay is the politeness delay between site crawl requests.
	CrawlDelay time.Duration

	// SameHost restricts site crawls to the seed URL's host.
	SameHost bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Verbose enables debug logging. When false only warnings and errors are logged.
	Verbose bool

	// JSONLog switches log output to JSON lines.
	JSONLog bool

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/dataminer on Linux).
	DBDir string

	// OutputFile is the default export path.
	OutputFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .dataminer is searched in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the loaded configuration file, if any.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDepth:  DefaultCrawlDepth,
		MaxPages:    DefaultMaxPages,
		Workers:     DefaultWorkers,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		OutputFile:  DefaultOutputFile,
	}
}

// XDGDataDir returns the XDG data directory for dataminer.
// On Linux: ~/.local/share/dataminer
// On macOS: ~/Library/Application Support/dataminer
// On Windows: %LOCALAPPDATA%\dataminer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dataminer.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.DBDir == "" {
		return ErrEmptyDBDir
	}
	return nil
}

// ApplyFile copies every value set in f onto c. Zero values in f leave the
// corresponding field unchanged. The file is also kept for per-site lookups.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f

	if f.Crawl.Depth != nil {
		c.CrawlDepth = *f.Crawl.Depth
	}
	if f.Crawl.MaxPages != 0 {
		c.MaxPages = f.Crawl.MaxPages
	}
	if f.Crawl.Delay != nil {
		c.CrawlDelay = *f.Crawl.Delay
	}
	if f.Crawl.SameHost != nil {
		c.SameHost = *f.Crawl.SameHost
	}
	if f.Fetch.Timeout != 0 {
		c.Timeout = f.Fetch.Timeout
	}
	if f.Fetch.UserAgent != "" {
		c.UserAgent = f.Fetch.UserAgent
	}
	if f.Fetch.MaxBodySize != 0 {
		c.MaxBodySize = f.Fetch.MaxBodySize
	}
	if f.Fetch.Proxy != "" {
		c.ProxyAddress = f.Fetch.Proxy
	}
	if f.Batch.Workers != 0 {
		c.Workers = f.Batch.Workers
	}
	if f.Storage.DBDir != "" {
		c.DBDir = f.Storage.DBDir
	}
	if f.Storage.Output != "" {
		c.OutputFile = f.Storage.Output
	}
}

// Site returns the per-site settings for host. It is the zero SiteConfig
// when no file is loaded.
func (c *Config) Site(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}
