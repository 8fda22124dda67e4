package service

import (
	"context"
	"fmt"

	"spikeradar/internal/alerting"
	"spikeradar/internal/classify"
	"spikeradar/internal/metrics"
	"spikeradar/internal/model"
)

// markSeen records every id and returns the pending alerts that were not seen
// before and rank at or above the notification threshold. The first list a
// session sees only seeds the set.
func (d *Dashboard) markSeen(alerts []model.Alert) []model.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	seeding := !d.seeded
	d.seeded = true

	var fresh []model.Alert
	for _, alert := range alerts {
		if _, ok := d.seen[alert.ID]; ok {
			continue
		}
		d.seen[alert.ID] = struct{}{}
		if seeding || !d.notifyOn {
			continue
		}
		if alert.Status == model.StatusPending && classify.AtLeast(alert.Urgency, d.minUrgency) {
			fresh = append(fresh, alert)
		}
	}
	return fresh
}

func (d *Dashboard) dispatch(alerts []model.Alert) {
	d.bg.Add(1)
	go func() {
		defer d.bg.Done()

		unlock, proceed, err := d.acquireLock(d.ctx)
		if err != nil {
			d.logger.Error().Err(err).Msg("notification lock")
			return
		}
		if !proceed {
			d.logger.Debug().Int("alerts", len(alerts)).Msg("skip notifications because advisory lock held elsewhere")
			return
		}
		if unlock != nil {
			defer unlock()
		}

		for _, alert := range alerts {
			note := alerting.Notification{Alert: alert, DetectedAt: d.clock.Now()}
			err := d.notifier.Notify(d.ctx, note)
			metrics.NotificationsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
			if err != nil {
				d.logger.Error().Err(err).Str("alert_id", string(alert.ID)).Msg("failed to dispatch notification")
				continue
			}
			d.logger.Info().
				Str("alert_id", string(alert.ID)).
				Str("urgency", string(alert.Urgency)).
				Msg("notification sent")
		}
	}()
}

func (d *Dashboard) acquireLock(ctx context.Context) (func(), bool, error) {
	if d.lockKey == 0 || d.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := d.locker.TryAdvisoryLock(ctx, d.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
