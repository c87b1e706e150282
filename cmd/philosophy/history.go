package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/philosophy-walker/internal/adapter/sqlite"
	"github.com/user/philosophy-walker/internal/usecase"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the walks stored by earlier play runs",
		Long: `History prints the most recent walks saved with play --db, newest first.

Examples:
  philosophy history --db walks.db
  philosophy history --db walks.db --limit 5`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db", "", "SQLite file written by play --db")
	cmd.Flags().IntP("limit", "n", usecase.DefaultRecentLimit, "Maximum number of walks to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no walk database at %s: %w", dbPath, err)
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list walks: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No walks stored yet.")
		return nil
	}
	for _, result := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %2d hops  %s\n",
			result.FinishedAt.Format("2006-01-02 15:04:05"), result.Outcome, result.Hops(), strings.Join(result.Path, " -> "))
	}
	return nil
}
