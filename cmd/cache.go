package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats reports how much artwork is cached locally.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if r.art == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	stats, err := r.art.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlain("Artwork entries: %d\n", stats.Entries)
	r.writePlain("Disk usage: %.1f KiB\n", float64(stats.DiskBytes)/1024)

	return nil
}

// CachePrune removes artwork older than the retention window.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	maxAge := cmd.Duration("max-age")

	if r.art == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	r.logger.Info("pruning artwork cache", "max_age", maxAge)

	removed, err := r.art.Prune(maxAge)
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}

	r.writePlain("✓ Removed %d cached images\n", removed)

	return nil
}

// cacheCommand manages locally cached artwork
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached artwork",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show artwork cache size",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:  "prune",
				Usage: "Remove artwork older than the retention window",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "max-age",
						Usage: "Retention window for cached images",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.CachePrune,
			},
		},
	}
}
