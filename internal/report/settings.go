package report

import (
	"strconv"

	"github.com/nao1215/dataminer/internal/config"
)

// Setting is one named configuration value shown to the user.
type Setting struct {
	Name  string
	Value string
}

// Settings lists the effective configuration in display order.
func Settings(cfg *config.Config) []Setting {
	proxy := cfg.ProxyAddress
	if proxy == "" {
		proxy = "none"
	}
	configFile := cfg.ConfigFilePath
	if configFile == "" {
		configFile = "none"
	}

	return []Setting{
		{Name: "Crawl depth", Value: strconv.Itoa(cfg.CrawlDepth)},
		{Name: "Max pages", Value: strconv.Itoa(cfg.MaxPages)},
		{Name: "Crawl delay", Value: cfg.CrawlDelay.String()},
		{Name: "Same host only", Value: strconv.FormatBool(cfg.SameHost)},
		{Name: "Batch workers", Value: strconv.Itoa(cfg.Workers)},
		{Name: "Request timeout", Value: cfg.Timeout.String()},
		{Name: "User agent", Value: cfg.UserAgent},
		{Name: "Max body size", Value: strconv.FormatInt(cfg.MaxBodySize, 10) + " bytes"},
		{Name: "Proxy", Value: proxy},
		{Name: "Database directory", Value: cfg.DBDir},
		{Name: "Export file", Value: cfg.OutputFile},
		{Name: "Config file", Value: configFile},
	}
}
