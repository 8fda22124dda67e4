package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spikeradar/internal/model"
	"spikeradar/internal/service"
	"spikeradar/internal/view"
)

func (a *App) viewOptions() view.Options {
	return view.Options{
		Now:         time.Now().UTC(),
		VelocityCap: a.Config.Display.VelocityCap,
		FeedRows:    a.Config.Display.FeedRows,
	}
}

// Alerts prints the current alert listing.
func (a *App) Alerts(ctx context.Context, opts AlertsOptions) error {
	cfg := *a.Config
	if opts.Urgency != "" {
		cfg.Alerts.Urgency = strings.ToLower(opts.Urgency)
	}
	if opts.Status != "" {
		cfg.Alerts.Status = strings.ToLower(opts.Status)
	}
	cfg.Alerts.Limit = a.Config.ResolveLimit(opts.Limit)
	if err := cfg.Validate(); err != nil {
		return err
	}

	dash, closeSession, err := a.session(ctx, &cfg, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	if err := dash.Load(ctx); err != nil {
		return err
	}
	for _, id := range opts.Expand {
		dash.ToggleExpand(model.AlertID(id))
	}

	v := dash.View()
	vopts := a.viewOptions()
	view.Stats(a.Out, v.Stats, vopts.Now)
	fmt.Fprintln(a.Out)
	return view.Alerts(a.Out, v.Alerts, v.Expanded, vopts)
}

// Alert prints the full detail of one alert.
func (a *App) Alert(ctx context.Context, id string) error {
	remote, err := a.backend()
	if err != nil {
		return err
	}
	alert, err := remote.FetchAlert(ctx, a.userID(), model.AlertID(id))
	if err != nil {
		return err
	}
	view.Detail(a.Out, alert, time.Now().UTC())
	return nil
}

// Act marks an alert acted on.
func (a *App) Act(ctx context.Context, id string) error {
	return a.writeAction(ctx, service.ActionAct, id)
}

// Dismiss dismisses an alert.
func (a *App) Dismiss(ctx context.Context, id string) error {
	return a.writeAction(ctx, service.ActionDismiss, id)
}

func (a *App) writeAction(ctx context.Context, kind service.ActionKind, id string) error {
	dash, closeSession, err := a.session(ctx, a.Config, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	if err := dash.WriteAction(ctx, kind, model.AlertID(id)); err != nil {
		return err
	}
	label := "acted on"
	if kind == service.ActionDismiss {
		label = "dismissed"
	}
	fmt.Fprintf(a.Out, "alert %s %s\n", id, label)
	return nil
}

// Feed prints the velocity feed.
func (a *App) Feed(ctx context.Context, opts FeedOptions) error {
	dash, closeSession, err := a.session(ctx, a.Config, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	if err := dash.Load(ctx); err != nil {
		return err
	}
	v := dash.View()
	vopts := a.viewOptions()
	if opts.Rows > 0 {
		vopts.FeedRows = opts.Rows
	}
	view.Stats(a.Out, v.Stats, vopts.Now)
	fmt.Fprintln(a.Out)
	return view.Feed(a.Out, v.Feed, vopts)
}

// Scan triggers an on-demand scan and prints its summary.
func (a *App) Scan(ctx context.Context) error {
	dash, closeSession, err := a.session(ctx, a.Config, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	if !dash.TriggerScan() {
		return errors.New("a scan is already running")
	}
	fmt.Fprintln(a.Out, "Scanning competitors...")
	dash.WaitScan()

	snap := dash.View().Scan
	if snap.Failed {
		return fmt.Errorf("scan failed: %s", snap.Err)
	}
	if snap.Result == nil {
		return errors.New("scan finished without a result")
	}
	fmt.Fprintln(a.Out, view.ScanSummary(*snap.Result))
	return nil
}
