package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/database"
	"github.com/nao1215/dataminer/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored pages by title or content",
		Long: `Search lists stored pages whose title or content contains the query,
ignoring case, newest first. Multiple arguments are joined with spaces.

Examples:
  dataminer search contact
  dataminer search "privacy policy" -l 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("limit", "l", database.DefaultSearchLimit, "Maximum number of results")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("search query must not be empty")
	}

	logger := newLogger(cmd, cfg)
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	pages, err := db.Search(cmd.Context(), query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return report.NewSimpleWriter(cmd.OutOrStdout()).WriteSearch(query, pages)
}
