package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/config"
	"github.com/nao1215/dataminer/internal/crawler"
	"github.com/nao1215/dataminer/internal/report"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url1,url2,...> [more urls...]",
		Short: "Fetch a list of URLs in parallel without following links",
		Long: `Scrape fetches every given URL once, in parallel, and stores each page with
new content. URLs may be given as separate arguments, comma-separated, or both.
Links found on the pages are not followed and no delay is applied.

Examples:
  dataminer scrape https://example.com/a,https://example.com/b
  dataminer scrape -w 20 https://example.com/a https://example.org/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return err
		}
	}
	if err := applyFetchFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	urls := splitURLs(args)
	if len(urls) == 0 {
		return fmt.Errorf("%w: no URLs given", crawler.ErrInvalidURL)
	}

	logger := newLogger(cmd, cfg)
	// Batch input spans hosts, so only the default site settings apply.
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
		crawler.WithWorkers(cfg.Workers),
		crawler.WithLogger(logger),
	)

	res, batchErr := c.BatchFetch(ctx, urls)
	if res == nil {
		return batchErr
	}
	if err := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)).WriteResult(res); err != nil {
		return err
	}
	if batchErr != nil {
		return fmt.Errorf("scrape stopped early: %w", batchErr)
	}
	return nil
}

// splitURLs flattens comma-separated arguments into a URL list.
// Blank entries are dropped.
func splitURLs(args []string) []string {
	var urls []string
	for _, arg := range args {
		for _, u := range strings.Split(arg, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
