package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var creatorsCmd = &cobra.Command{
	Use:   "creators",
	Short: "Manage tracked competitors",
}

var creatorsTrackCmd = &cobra.Command{
	Use:   "track <handle>...",
	Short: "Start tracking one or more competitors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().TrackCreators(cmd.Context(), args)
	},
}

var creatorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListCreators(cmd.Context())
	},
}

var creatorsUntrackCmd = &cobra.Command{
	Use:   "untrack <creator-id>",
	Short: "Stop tracking a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid creator id %q: %w", args[0], err)
		}
		return getApp().UntrackCreator(cmd.Context(), id)
	},
}

func init() {
	creatorsCmd.AddCommand(creatorsTrackCmd, creatorsListCmd, creatorsUntrackCmd)
}
