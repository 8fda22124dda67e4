package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spikeradar/internal/app"
)

var (
	historyLimit   int
	pruneOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display journaled alert actions and scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		return getApp().History(cmd.Context(), app.HistoryOptions{Limit: historyLimit})
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete journal rows past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pruneOlderThan < 0 {
			return fmt.Errorf("--older-than must not be negative")
		}
		return getApp().Prune(cmd.Context(), app.PruneOptions{OlderThan: pruneOlderThan})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of rows to display per table")
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Retention window (defaults to database.retention)")
}
