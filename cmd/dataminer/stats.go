package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics and the effective settings",
		Long: `Stats prints the number of stored records and processed URLs by status,
followed by the settings that crawl and scrape would use.`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false, "Print statistics as Markdown")

	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	if asMarkdown {
		return report.NewMarkdownWriter(cmd.OutOrStdout()).WriteStats(stats, report.Settings(cfg))
	}
	w := report.NewSimpleWriter(cmd.OutOrStdout())
	if err := w.WriteStats(stats); err != nil {
		return err
	}
	return w.WriteSettings(report.Settings(cfg))
}
