package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// CacheStats prints how many assist resolutions are cached.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepositories(); err != nil {
		return err
	}

	count, err := r.repos.Resolutions.Count()
	if err != nil {
		return err
	}
	return r.writePlain("Cached resolutions: %d\n", count)
}

// CachePrune drops resolutions older than --older-than.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepositories(); err != nil {
		return err
	}

	cutoff := time.Now().Add(-cmd.Duration("older-than"))
	removed, err := r.repos.Resolutions.Prune(cutoff)
	if err != nil {
		return err
	}

	r.logger.Info("pruned resolution cache", "removed", removed, "cutoff", cutoff)
	return r.writePlain("✓ Removed %d cached resolutions\n", removed)
}
