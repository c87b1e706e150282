package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/adapter/memory"
	"github.com/user/philosophy-walker/internal/adapter/sqlite"
	"github.com/user/philosophy-walker/internal/bootstrap"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/internal/usecase"
	"github.com/user/philosophy-walker/pkg/config"
	"github.com/user/philosophy-walker/pkg/logger"
	"github.com/user/philosophy-walker/pkg/utils"
)

// NewPlayCmd creates the play command.
func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [page...]",
		Short: "Walk from one or more articles towards Philosophy",
		Long: `Play walks from every given article towards the target article and prints how
many pages it took, or why the walk ended early.

Pages are article names ("Computer Science") or full article URLs. Without
arguments the START_PAGES setting is used.

Examples:
  philosophy play Pianist
  philosophy play "Computer Science" https://en.wikipedia.org/wiki/President
  philosophy play --graph paths.dot --db walks.db`,
		Args: cobra.ArbitraryArgs,
		RunE: runPlayCmd,
	}

	cmd.Flags().StringP("graph", "g", "", "Write the combined path graph as Graphviz DOT to this file")
	cmd.Flags().String("db", "", "SQLite file that keeps results and the graph between runs")
	cmd.Flags().IntP("concurrency", "c", 0, "Number of walks run at the same time (default BATCH_CONCURRENCY)")

	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, releaseFetcher, err := bootstrap.NewPageFetcher(cfg, nil, nil, log)
	if err != nil {
		return err
	}
	defer releaseFetcher()
	traverser, err := usecase.NewTraverser(fetcher, cfg.WikiBaseURL, cfg.TargetPath, nil, log)
	if err != nil {
		return err
	}

	var (
		results repository.TraversalRepository = memory.NewTraversalRepo()
		edges   repository.GraphEdgeRepository = memory.NewGraphEdgeRepo()
	)
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		results, edges = store, store
	}
	game := usecase.NewGame(traverser, results, edges, nil, nil, log)

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.BatchConcurrency
	}

	pages := args
	if len(pages) == 0 {
		pages = cfg.StartPageNames()
	}
	if len(pages) == 0 {
		return errors.New("no start pages given")
	}
	starts := make([]string, len(pages))
	for i, page := range pages {
		starts[i] = startAddress(cfg.WikiBaseURL, page)
	}

	log.Debug("starting walks", zap.Strings("starts", starts), zap.Int("concurrency", concurrency))
	reports := game.PlayAll(ctx, starts, concurrency)
	failed := printReports(cmd.OutOrStdout(), reports, game.TargetName())

	if graphPath, _ := cmd.Flags().GetString("graph"); graphPath != "" {
		if err := writeGraph(ctx, game, graphPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Path graph written to %s\n", graphPath)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if failed == len(reports) {
		return errors.New("no walk could be started")
	}
	return nil
}

// startAddress accepts an article name or a full article URL.
func startAddress(base, page string) string {
	page = strings.TrimSpace(page)
	if strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		return page
	}
	return utils.ArticleURL(base, page)
}

// printReports writes one verdict per start page and returns how many could not be walked.
func printReports(w io.Writer, reports []usecase.PlayReport, targetName string) int {
	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", report.Start, report.Err)
			failed++
			continue
		}
		fmt.Fprintln(w, usecase.Summary(report.Result, targetName))
		fmt.Fprintf(w, "  %s\n", strings.Join(report.Result.Path, " -> "))
	}
	return failed
}

func writeGraph(ctx context.Context, game usecase.Game, path string) error {
	g, err := game.Graph(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	if err := g.WriteDOT(f, game.TargetName()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return f.Close()
}
