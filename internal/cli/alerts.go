package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"spikeradar/internal/app"
	"spikeradar/internal/config"
)

var (
	alertsUrgency string
	alertsStatus  string
	alertsLimit   int
	alertsExpand  []string
	feedRows      int
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List velocity alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertsLimit < 0 || alertsLimit > config.MaxAlertLimit {
			return fmt.Errorf("--limit must be between 1 and %d", config.MaxAlertLimit)
		}
		return getApp().Alerts(cmd.Context(), app.AlertsOptions{
			Urgency: alertsUrgency,
			Status:  alertsStatus,
			Limit:   alertsLimit,
			Expand:  alertsExpand,
		})
	},
}

var alertCmd = &cobra.Command{
	Use:   "alert <id>",
	Short: "Show the full draft for one alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Alert(cmd.Context(), args[0])
	},
}

var actCmd = &cobra.Command{
	Use:   "act <id>",
	Short: "Mark an alert as acted on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Act(cmd.Context(), args[0])
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Dismiss(cmd.Context(), args[0])
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the velocity feed of tracked creators",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Feed(cmd.Context(), app.FeedOptions{Rows: feedRows})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan tracked creators for spikes now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Scan(cmd.Context())
	},
}

func init() {
	alertsCmd.Flags().StringVar(&alertsUrgency, "urgency", "", "Filter by urgency (critical, high, medium, low)")
	alertsCmd.Flags().StringVar(&alertsStatus, "status", "", "Filter by status (pending, acted_on, dismissed)")
	alertsCmd.Flags().IntVar(&alertsLimit, "limit", 0, "Maximum alerts to list (defaults to config)")
	alertsCmd.Flags().StringSliceVar(&alertsExpand, "expand", nil, "Alert ids to show in detail")

	feedCmd.Flags().IntVar(&feedRows, "rows", 0, "Maximum feed rows (defaults to config)")
}
