package app

import (
	"context"
	"errors"
	"time"

	"spikeradar/internal/alerting"
	"spikeradar/internal/model"
)

// SimulateAlert sends the notification for an existing alert through the
// configured channels, bypassing the seen-set and urgency threshold.
func (a *App) SimulateAlert(ctx context.Context, id string) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no notification channel configured")
	}

	remote, err := a.backend()
	if err != nil {
		return err
	}
	alert, err := remote.FetchAlert(ctx, a.userID(), model.AlertID(id))
	if err != nil {
		return err
	}

	return notifier.Notify(ctx, alerting.Notification{Alert: alert, DetectedAt: time.Now().UTC()})
}
