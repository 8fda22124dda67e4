package cli

import (
	"github.com/spf13/cobra"

	"spikeradar/internal/app"
)

var (
	runInteractive bool
	runClear       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live dashboard session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Run(cmd.Context(), app.RunOptions{
			Interactive: runInteractive,
			Clear:       runClear,
		})
	},
}

func init() {
	runCmd.Flags().BoolVar(&runInteractive, "interactive", true, "Read act/dismiss/expand/scan commands from stdin")
	runCmd.Flags().BoolVar(&runClear, "clear", true, "Clear the terminal before each redraw")
}
