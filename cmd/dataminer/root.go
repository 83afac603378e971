package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dataminer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataminer",
		Short: "Crawl websites and mine their content into a local database",
		Long: `dataminer crawls a website breadth-first, or fetches a list of URLs in
parallel, and extracts from every page its title, visible text, links and
content signals such as email addresses, phone numbers and social media handles.

Pages are deduplicated by content and stored in a SQLite database
(by default under the XDG data directory) where they can be searched,
summarized and exported to JSON, CSV or Markdown.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .dataminer in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the database (default: XDG data directory)")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON lines")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
