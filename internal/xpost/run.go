package xpost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/blacktop/xsync/internal/logutil"
	"golang.org/x/time/rate"
)

// Runner performs one sync cycle between a Mastodon and a Bluesky account.
type Runner struct {
	Mastodon MastodonAccount
	Bluesky  BlueskyAccount
	Cache    CacheStore
	Options  SyncOptions

	// DryRun prints what would be posted without posting or saving the cache.
	DryRun bool
	// SkipExisting records all pending posts in the cache without posting
	// them. Useful on the first run against accounts that already have
	// history.
	SkipExisting bool
	// Interval is the minimum time between two posts, zero posts as fast as
	// possible.
	Interval time.Duration
	Out      io.Writer
}

// Run fetches both timelines, posts whatever is missing on either side and
// persists the post cache.
func (r *Runner) Run(ctx context.Context) error {
	statuses, err := r.Mastodon.Statuses(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s timeline: %w", r.Mastodon.Name(), err)
	}
	feed, err := r.Bluesky.Feed(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s timeline: %w", r.Bluesky.Name(), err)
	}
	logutil.Debugf("fetched timelines: %s=%d %s=%d", r.Mastodon.Name(), len(statuses), r.Bluesky.Name(), len(feed))

	updates := DeterminePosts(statuses, feed, r.Options)
	cache := r.Cache.Load(ctx)
	updates = FilterPosted(updates, cache)

	if updates.Empty() {
		logutil.Debugf("nothing to sync")
		return nil
	}

	if r.DryRun {
		r.printPlan(updates)
		return nil
	}

	if r.SkipExisting {
		for _, status := range slices.Concat(updates.Mastodon, updates.Bluesky) {
			cache.Add(status.Text)
		}
		logutil.Infof("marked %d existing posts as synced", len(updates.Mastodon)+len(updates.Bluesky))
		if err := r.Cache.Save(ctx, cache); err != nil {
			return fmt.Errorf("save post cache: %w", err)
		}
		return nil
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if r.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(r.Interval), 1)
	}

	var errs []error
	errs = append(errs, r.publish(ctx, limiter, r.Mastodon, updates.Mastodon, cache)...)
	errs = append(errs, r.publish(ctx, limiter, r.Bluesky, updates.Bluesky, cache)...)

	// Save even after failures so successful posts are not repeated.
	if err := r.Cache.Save(ctx, cache); err != nil {
		errs = append(errs, fmt.Errorf("save post cache: %w", err))
	}

	return errors.Join(errs...)
}

func (r *Runner) publish(ctx context.Context, limiter *rate.Limiter, poster Poster, queue []NewStatus, cache PostCache) []error {
	out := r.out()

	var errs []error
	for _, status := range queue {
		if err := limiter.Wait(ctx); err != nil {
			return append(errs, fmt.Errorf("%s: %w", poster.Name(), err))
		}
		fmt.Fprintf(out, "posting to %s...\n", poster.Name())
		if err := poster.Post(ctx, status); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", poster.Name(), err))
			continue
		}
		cache.Add(status.Text)
		fmt.Fprintf(out, "posted to %s\n", poster.Name())
	}
	return errs
}

func (r *Runner) printPlan(updates Updates) {
	out := r.out()
	for _, status := range updates.Mastodon {
		fmt.Fprintf(out, "[dry-run] would post to %s: %q\n", r.Mastodon.Name(), status.Text)
		for _, media := range status.Attachments {
			fmt.Fprintf(out, "[dry-run] attachment: %s (alt: %q)\n", media.URL, media.AltText)
		}
	}
	for _, status := range updates.Bluesky {
		fmt.Fprintf(out, "[dry-run] would post to %s: %q\n", r.Bluesky.Name(), status.Text)
		for _, media := range status.Attachments {
			fmt.Fprintf(out, "[dry-run] attachment: %s (alt: %q)\n", media.URL, media.AltText)
		}
	}
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
