package cli

import (
	"github.com/spf13/cobra"

	"spikeradar/internal/app"
	"spikeradar/internal/model"
)

var (
	setup   app.SetupOptions
	pillars model.ContentPillars
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the viewer account",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a viewer and track competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CreateUser(cmd.Context(), setup)
	},
}

var userGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the configured viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ShowUser(cmd.Context())
	},
}

var userPillarsCmd = &cobra.Command{
	Use:   "pillars",
	Short: "Replace the viewer's content pillars",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().UpdatePillars(cmd.Context(), pillars)
	},
}

var userPushTokenCmd = &cobra.Command{
	Use:   "push-token <token>",
	Short: "Store the viewer's push notification token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().UpdatePushToken(cmd.Context(), args[0])
	},
}

func init() {
	flags := userCreateCmd.Flags()
	flags.StringVar(&setup.Username, "username", "", "Unique username")
	flags.StringVar(&setup.Handle, "handle", "", "Your Instagram handle")
	flags.StringVar(&setup.Narrative, "narrative", "", "Primary narrative of your content")
	flags.StringSliceVar(&setup.Topics, "topics", nil, "Content topics")
	flags.StringVar(&setup.Tone, "tone", "", "Voice and tone")
	flags.StringVar(&setup.Audience, "audience", "", "Target audience")
	flags.StringSliceVar(&setup.NicheTags, "niche-tags", nil, "Niche tags")
	flags.StringSliceVar(&setup.Competitors, "competitors", nil, "Competitor handles to track")
	_ = userCreateCmd.MarkFlagRequired("username")

	pflags := userPillarsCmd.Flags()
	pflags.StringVar(&pillars.PrimaryNarrative, "narrative", "", "Primary narrative of your content")
	pflags.StringSliceVar(&pillars.Topics, "topics", nil, "Content topics")
	pflags.StringVar(&pillars.Tone, "tone", "", "Voice and tone")
	pflags.StringVar(&pillars.Audience, "audience", "", "Target audience")
	_ = userPillarsCmd.MarkFlagRequired("narrative")

	userCmd.AddCommand(userCreateCmd, userGetCmd, userPillarsCmd, userPushTokenCmd)
}
