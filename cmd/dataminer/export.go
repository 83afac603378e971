package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored pages as JSON, CSV or Markdown",
		Long: `Export writes every stored page, newest first, to a file.

JSON exports contain the full record including metadata and analysis.
CSV exports contain the URL, Title, Content and Timestamp columns.
Markdown exports summarize each page and the signals found on it.

Examples:
  # Write mined_data.json (or storage.output from the config file)
  dataminer export

  # CSV to a chosen file
  dataminer export -f csv -o pages.csv

  # Markdown to stdout
  dataminer export -f markdown -o -`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("format", "f", string(report.FormatJSON), "Export format: json, csv or markdown")
	cmd.Flags().StringP("output", "o", "", `Output file, "-" for stdout (default: mined_data.json)`)

	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.OutputFile
	}

	logger := newLogger(cmd, cfg)
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := exportPages(cmd.Context(), cmd, db, format, output)
	if err != nil {
		return err
	}
	if output != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", n, output)
	}
	return nil
}
