package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var invalidateBelowVersion int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
	Long:  `Inspect and maintain the cache of verified simplification results.`,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cache entries",
	RunE:  runCachePurge,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Remove cache entries below a policy version",
	Long: `Remove cache entries stored under an older policy version.

Without --below, the configured pipeline.policy_version is used, which
removes everything produced before the current prompt and verification
rules.`,
	RunE: runCacheInvalidate,
}

func init() {
	cacheInvalidateCmd.Flags().IntVar(&invalidateBelowVersion, "below", 0, "remove entries below this policy version")
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	if err := bootstrapCache(); err != nil {
		return err
	}

	removed, err := cacheStore.Purge(cmd.Context(), time.Now())
	if err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}

	cmd.Printf("Removed %d expired entries\n", removed)
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, _ []string) error {
	if err := bootstrapCache(); err != nil {
		return err
	}

	below := invalidateBelowVersion
	if below == 0 {
		below = settings.PolicyVersion
	}
	if below <= 0 {
		return errors.New("no policy version configured, pass --below explicitly")
	}

	removed, err := cacheStore.InvalidateBelow(cmd.Context(), below)
	if err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}

	cmd.Printf("Removed %d entries below policy version %d\n", removed, below)
	return nil
}
