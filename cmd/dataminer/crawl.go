package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/config"
	"github.com/nao1215/dataminer/internal/crawler"
	"github.com/nao1215/dataminer/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website breadth-first from a seed URL",
		Long: `Crawl visits the seed URL and follows links breadth-first up to the given
depth, waiting between requests. Every page is parsed and analyzed, and pages
with new content are stored in the database.

Examples:
  # Crawl two levels deep (default)
  dataminer crawl https://example.com

  # Crawl only the seed page
  dataminer crawl https://example.com -d 0

  # Stay on the seed host, at most 50 pages, half a second apart
  dataminer crawl https://example.com --same-host -p 50 --delay 500ms

  # Export the database as JSON when the crawl finishes
  dataminer crawl https://example.com -o mined_data.json

Site-specific settings (cookies, headers, depth, ignore/follow patterns) are
read from the sites section of the configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth, "Maximum link depth below the seed page")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum number of pages to visit")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Delay between requests")
	cmd.Flags().Bool("same-host", false, "Only follow links on the seed URL's host")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")
	cmd.Flags().StringP("output", "o", "", "Export the database as JSON to this file after crawling")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	seed := args[0]
	if !crawler.IsValidURL(seed) {
		return fmt.Errorf("%w: %q (expected an absolute http or https URL)", crawler.ErrInvalidURL, seed)
	}
	host := ""
	if u, err := url.Parse(seed); err == nil {
		host = u.Host
	}
	site := cfg.Site(host)

	depth := cfg.CrawlDepth
	if site.Depth != nil && !cmd.Flags().Changed("depth") {
		depth = *site.Depth
	}

	logger := newLogger(cmd, cfg)
	f, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	c := crawler.New(f, db,
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithSameHost(cfg.SameHost),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithLogger(logger),
	)

	res, crawlErr := c.CrawlSite(ctx, seed, depth)
	if res == nil {
		return crawlErr
	}
	if err := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)).WriteResult(res); err != nil {
		return err
	}
	if crawlErr != nil {
		return fmt.Errorf("crawl stopped early: %w", crawlErr)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		return nil
	}
	n, err := exportPages(ctx, cmd, db, report.FormatJSON, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", n, output)
	return nil
}

// applyCrawlFlags overrides cfg with the crawl flags given on the command
// line. Flags left at their defaults keep the config file's values.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("depth") {
		if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
			return err
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("same-host") {
		if cfg.SameHost, err = flags.GetBool("same-host"); err != nil {
			return err
		}
	}
	return applyFetchFlags(cmd, cfg)
}

// applyFetchFlags overrides the HTTP client settings shared by crawl and
// scrape.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	return nil
}
