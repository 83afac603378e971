package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored pages and URL statuses",
		Long: `Clear removes every stored page and URL status from the database.
You are asked for confirmation unless -y is given.`,
		Args: cobra.NoArgs,
		RunE: runClearCmd,
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}

	if !yes {
		fmt.Fprint(cmd.OutOrStdout(), "Delete all stored data? [y/N]: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n') //nolint:errcheck // EOF means no
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	logger := newLogger(cmd, cfg)
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database cleared.")
	return nil
}
