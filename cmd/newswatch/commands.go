package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-empire/internal/breaking"
	"stock-empire/internal/config"
	"stock-empire/internal/domain"
	"stock-empire/internal/repository"
	"stock-empire/pkg/logger"
)

const fetchTimeout = 10 * time.Second

type watchOptions struct {
	feed     string
	state    string
	interval time.Duration
}

var opts watchOptions

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the feed once",
	Long:  `Fetch the feed once and print the newest breaking item if it has not been seen yet.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		poller, err := newPoller(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		_, _, err = poller.Poll(cmd.Context())
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the feed until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		poller, err := newPoller(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		poller.Start(ctx)
		<-ctx.Done()
		poller.Stop()
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{pollCmd, watchCmd} {
		c.Flags().StringVar(&opts.feed, "feed", "", "feed URL or file (default: REALTIME_NEWS_FILE located via DATA_DIRS)")
		c.Flags().StringVar(&opts.state, "state", "", "file holding the last seen id (default: in memory)")
		rootCmd.AddCommand(c)
	}
	watchCmd.Flags().DurationVar(&opts.interval, "interval", breaking.DefaultInterval, "time between polls")
}

func newPoller(out, errOut io.Writer) (*breaking.Poller, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(cfg.LogLevel, errOut).Named("newswatch")

	fetcher, err := newFetcher(opts.feed, cfg)
	if err != nil {
		return nil, err
	}

	var seen breaking.SeenStore = breaking.NewMemorySeenStore()
	if opts.state != "" {
		seen = breaking.NewFileSeenStore(opts.state)
	}

	return breaking.NewPoller(fetcher, seen, printItem(out, log), opts.interval, log.Logger), nil
}

// newFetcher picks an HTTP or file fetcher for feed. An empty feed means the
// configured realtime file in the data directories.
func newFetcher(feed string, cfg *config.Config) (breaking.Fetcher, error) {
	switch {
	case strings.HasPrefix(feed, "http://"), strings.HasPrefix(feed, "https://"):
		return breaking.NewHTTPFetcher(feed, fetchTimeout), nil
	case feed != "":
		return breaking.NewFileFetcher(feed), nil
	}

	path, err := repository.NewFeedRepository(cfg.DataDirs).Locate(cfg.RealtimeNewsFile)
	if err != nil {
		return nil, fmt.Errorf("locate %s in %v: %w", cfg.RealtimeNewsFile, cfg.DataDirs, err)
	}
	return breaking.NewFileFetcher(path), nil
}

func printItem(out io.Writer, log *logger.Logger) breaking.Handler {
	enc := json.NewEncoder(out)
	return func(item domain.BreakingNewsItem) {
		if err := enc.Encode(item); err != nil {
			log.WithError(err).Error("Failed to write breaking item")
		}
	}
}

// run executes the root command with args. Used by tests.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	opts = watchOptions{}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}
