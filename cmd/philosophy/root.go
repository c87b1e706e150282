// Package main provides the philosophy command line game.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "philosophy",
		Short: "Follow first links on Wikipedia until you reach Philosophy",
		Long: `philosophy plays the "Getting to Philosophy" game: starting from an article it
keeps clicking the first link of the body text that is not in parentheses, a
citation, an infobox, a navigation box or an image caption, until it reaches the
Philosophy article, a page it has already seen, or a page with nothing to click.

Configuration is read from the environment and an optional .env file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewHistoryCmd())
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
