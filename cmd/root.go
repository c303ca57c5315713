/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/blacktop/xsync/internal/cache"
	"github.com/blacktop/xsync/internal/config"
	"github.com/blacktop/xsync/internal/logutil"
	"github.com/blacktop/xsync/internal/xpost"
	"github.com/blacktop/xsync/internal/xpost/bluesky"
	"github.com/blacktop/xsync/internal/xpost/mastodon"
	"github.com/spf13/cobra"
)

type options struct {
	configPath      string
	cacheFile       string
	redisURL        string
	dryRun          bool
	skipExisting    bool
	verbose         bool
	syncReblogs     bool
	syncReposts     bool
	hashtagBluesky  string
	hashtagMastodon string
}

// ExecuteContext runs the root command until ctx is cancelled.
func ExecuteContext(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "xsync",
		Short: "Mirror posts between Mastodon and Bluesky",
		Long: "xsync copies new posts from Mastodon to Bluesky and from Bluesky to Mastodon. " +
			"Run it periodically; it stops at the newest post that exists on both sides and " +
			"remembers what it posted to avoid duplicates.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
		Example: `  xsync --dry-run
  xsync --config ~/.config/xsync.yaml --sync-reblogs
  xsync --skip-existing-posts   # first run against accounts with history`,
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "Path to the YAML config file")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Post cache file (default "+cache.DefaultFile+")")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Keep the post cache in Redis instead of a file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print actions without posting")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing-posts", false, "Mark pending posts as synced without posting them")
	cmd.Flags().BoolVar(&opts.syncReblogs, "sync-reblogs", false, "Mirror Mastodon boosts to Bluesky")
	cmd.Flags().BoolVar(&opts.syncReposts, "sync-reposts", false, "Mirror Bluesky reposts to Mastodon")
	cmd.Flags().StringVar(&opts.hashtagBluesky, "sync-hashtag-bluesky", "", "Only mirror Bluesky posts containing this text")
	cmd.Flags().StringVar(&opts.hashtagMastodon, "sync-hashtag-mastodon", "", "Only mirror Mastodon posts containing this text")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "V", false, "Enable debug logging")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newCompletionCommand())

	return cmd
}

func runRoot(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	logutil.SetVerbose(opts.verbose)

	cfg, err := config.Load(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, &cfg)

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	masto, sky, err := buildAccounts(ctx, cfg)
	if err != nil {
		return err
	}

	runner := &xpost.Runner{
		Mastodon:     masto,
		Bluesky:      sky,
		Cache:        store,
		Options:      cfg.Sync,
		DryRun:       opts.dryRun,
		SkipExisting: opts.skipExisting,
		Interval:     cfg.PostInterval,
		Out:          cmd.OutOrStdout(),
	}
	return runner.Run(ctx)
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("cache-file") {
		cfg.Cache.File = opts.cacheFile
	}
	if flags.Changed("redis-url") {
		cfg.Cache.RedisURL = opts.redisURL
	}
	if flags.Changed("sync-reblogs") {
		cfg.Sync.Reblogs = opts.syncReblogs
	}
	if flags.Changed("sync-reposts") {
		cfg.Sync.Reposts = opts.syncReposts
	}
	if flags.Changed("sync-hashtag-bluesky") {
		cfg.Sync.HashtagBluesky = opts.hashtagBluesky
	}
	if flags.Changed("sync-hashtag-mastodon") {
		cfg.Sync.HashtagMastodon = opts.hashtagMastodon
	}
}

func buildAccounts(ctx context.Context, cfg config.Config) (*mastodon.Client, *bluesky.Client, error) {
	var errs []error

	masto, err := mastodon.New(cfg.Mastodon)
	if err != nil {
		errs = append(errs, fmt.Errorf("mastodon: %w", err))
	}
	sky, err := bluesky.New(ctx, cfg.Bluesky)
	if err != nil {
		errs = append(errs, fmt.Errorf("bluesky: %w", err))
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return masto, sky, nil
}
