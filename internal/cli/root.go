package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spikeradar/internal/app"
	"spikeradar/internal/config"
	"spikeradar/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	demoMode  bool
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "spikeradar",
	Short:         "Watch competitor velocity spikes and act on the alerts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if demoMode {
			cfg.Demo.Enabled = true
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Serve built-in fixture data instead of calling the backend")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(actCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(creatorsCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
