package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the regulation knowledge base",
	Long: `The knowledge base holds embedded regulation passages that ground issue
detection. Index a directory of regulation texts before running analyse.`,
}

var kbIndexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Index regulation files under a directory",
	Long: `Parse, chunk and embed every supported file under dir.
Re-indexing a file replaces its passages.

With --watch, keep running after the initial pass and re-index files as
they are added, changed or removed. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBIndex,
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runKBStats,
}

func init() {
	kbIndexCmd.Flags().BoolP("watch", "w", false, "Re-index files as they change")
	needs(kbIndexCmd, NeedEmbedding)
	kbCmd.AddCommand(kbIndexCmd)
	kbCmd.AddCommand(kbStatsCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBIndex(cmd *cobra.Command, args []string) error {
	if knowledgeBaseService == nil {
		return errors.New("knowledge base service not configured")
	}

	cmd.Printf("Indexing %s...\n", args[0])
	stats, err := knowledgeBaseService.Index(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d files (%d passages).\n", stats.Files, stats.Passages)
	if len(stats.Skipped) > 0 {
		cmd.Printf("Skipped %d files:\n", len(stats.Skipped))
		for _, name := range stats.Skipped {
			cmd.Printf("  - %s\n", name)
		}
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}
	if !watch {
		return nil
	}

	cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", args[0])
	err = knowledgeBaseService.Watch(cmd.Context(), args[0], func(e driving.WatchEvent) {
		switch {
		case e.Err != nil:
			cmd.PrintErrf("  ! %s: %v\n", e.Source, e.Err)
		case e.Removed:
			cmd.Printf("  - %s removed\n", e.Source)
		default:
			cmd.Printf("  + %s (%d passages)\n", e.Source, e.Passages)
		}
	})
	if err != nil {
		return fmt.Errorf("watching failed: %w", err)
	}
	return nil
}

func runKBStats(cmd *cobra.Command, _ []string) error {
	if knowledgeBaseService == nil {
		return errors.New("knowledge base service not configured")
	}

	count, err := knowledgeBaseService.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count passages: %w", err)
	}
	cmd.Printf("Passages: %d\n", count)
	return nil
}
