package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"spikeradar/internal/model"
)

// SetupOptions describe a new viewer and the competitors to watch.
type SetupOptions struct {
	Username    string
	Handle      string
	Narrative   string
	Topics      []string
	Tone        string
	Audience    string
	NicheTags   []string
	Competitors []string
}

// CreateUser registers a viewer, then tracks each competitor in order. A
// competitor that cannot be tracked is reported and skipped.
func (a *App) CreateUser(ctx context.Context, opts SetupOptions) error {
	if strings.TrimSpace(opts.Username) == "" {
		return errors.New("--username is required")
	}
	remote, err := a.backend()
	if err != nil {
		return err
	}

	in := model.UserCreate{
		Username:  opts.Username,
		NicheTags: opts.NicheTags,
	}
	if in.NicheTags == nil {
		in.NicheTags = []string{}
	}
	if handle := strings.TrimPrefix(strings.TrimSpace(opts.Handle), "@"); handle != "" {
		in.InstagramHandle = &handle
	}
	if opts.Narrative != "" || len(opts.Topics) > 0 {
		in.ContentPillars = &model.ContentPillars{
			PrimaryNarrative: opts.Narrative,
			Topics:           opts.Topics,
			Tone:             opts.Tone,
			Audience:         opts.Audience,
		}
	}

	user, err := remote.CreateUser(ctx, in)
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user created")
	fmt.Fprintf(a.Out, "created user %d (%s)\n", user.ID, user.Username)

	var failed int
	for _, handle := range opts.Competitors {
		handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		if handle == "" {
			continue
		}
		creator, err := remote.TrackCreator(ctx, user.ID, handle)
		if err != nil {
			failed++
			a.Logger.Warn().Err(err).Str("handle", handle).Msg("track creator")
			fmt.Fprintf(a.Out, "could not track @%s: %s\n", handle, err)
			continue
		}
		fmt.Fprintf(a.Out, "tracking @%s (id %d)\n", creator.InstagramHandle, creator.ID)
	}
	fmt.Fprintf(a.Out, "set app.user_id=%d (or SPIKERADAR_APP_USER_ID) to use this account\n", user.ID)
	if failed > 0 {
		return fmt.Errorf("%d competitor(s) could not be tracked", failed)
	}
	return nil
}

// ShowUser prints the configured viewer.
func (a *App) ShowUser(ctx context.Context) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	user, err := remote.GetUser(ctx, a.userID())
	if err != nil {
		return err
	}
	printUser(a, user)
	return nil
}

// UpdatePillars replaces the viewer's content pillars.
func (a *App) UpdatePillars(ctx context.Context, pillars model.ContentPillars) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	user, err := remote.UpdatePillars(ctx, a.userID(), pillars)
	if err != nil {
		return err
	}
	printUser(a, user)
	return nil
}

// UpdatePushToken stores the viewer's device token.
func (a *App) UpdatePushToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token must not be empty")
	}
	remote, err := a.backend()
	if err != nil {
		return err
	}
	if err := remote.UpdatePushToken(ctx, a.userID(), token); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "push token updated")
	return nil
}

// TrackCreators starts watching each handle.
func (a *App) TrackCreators(ctx context.Context, handles []string) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	for _, handle := range handles {
		handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		creator, err := remote.TrackCreator(ctx, a.userID(), handle)
		if err != nil {
			return fmt.Errorf("track @%s: %w", handle, err)
		}
		fmt.Fprintf(a.Out, "tracking @%s (id %d)\n", creator.InstagramHandle, creator.ID)
	}
	return nil
}

// ListCreators prints the tracked competitors.
func (a *App) ListCreators(ctx context.Context) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	creators, err := remote.ListCreators(ctx, a.userID())
	if err != nil {
		return err
	}
	if len(creators) == 0 {
		fmt.Fprintln(a.Out, "no tracked creators")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tHandle\tName\tFollowers\tAvg views")
	for _, c := range creators {
		name := ""
		if c.DisplayName != nil {
			name = *c.DisplayName
		}
		followers := "-"
		if c.FollowerCount != nil {
			followers = fmt.Sprintf("%d", *c.FollowerCount)
		}
		avg := "-"
		if c.AvgViews != nil {
			avg = formatFloat(*c.AvgViews, 0)
		}
		fmt.Fprintf(writer, "%d\t@%s\t%s\t%s\t%s\n", c.ID, c.InstagramHandle, name, followers, avg)
	}
	return writer.Flush()
}

// UntrackCreator stops watching a competitor.
func (a *App) UntrackCreator(ctx context.Context, creatorID int64) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	if err := remote.UntrackCreator(ctx, a.userID(), creatorID); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "creator %d untracked\n", creatorID)
	return nil
}

func printUser(a *App, user model.User) {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "ID\t%d\n", user.ID)
	fmt.Fprintf(writer, "Username\t%s\n", user.Username)
	if user.InstagramHandle != nil {
		fmt.Fprintf(writer, "Instagram\t@%s\n", *user.InstagramHandle)
	}
	if p := user.ContentPillars; p != nil {
		fmt.Fprintf(writer, "Narrative\t%s\n", p.PrimaryNarrative)
		fmt.Fprintf(writer, "Topics\t%s\n", strings.Join(p.Topics, ", "))
		if p.Tone != "" {
			fmt.Fprintf(writer, "Tone\t%s\n", p.Tone)
		}
		if p.Audience != "" {
			fmt.Fprintf(writer, "Audience\t%s\n", p.Audience)
		}
	}
	if len(user.NicheTags) > 0 {
		fmt.Fprintf(writer, "Niche tags\t%s\n", strings.Join(user.NicheTags, ", "))
	}
	fmt.Fprintf(writer, "Notifications\t%t\n", user.NotificationEnabled)
	writer.Flush()
}
