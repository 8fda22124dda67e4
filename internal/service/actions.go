package service

import (
	"context"
	"fmt"

	"spikeradar/internal/metrics"
	"spikeradar/internal/model"
	"spikeradar/internal/storage"
)

// ActionKind is a server-authoritative status write.
type ActionKind string

const (
	ActionAct     ActionKind = "act"
	ActionDismiss ActionKind = "dismiss"
)

func (d *Dashboard) writeInBackground(kind ActionKind, id model.AlertID) {
	d.bg.Add(1)
	go func() {
		defer d.bg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), d.actionTimeout)
		defer cancel()

		err := d.WriteAction(ctx, kind, id)

		d.mu.Lock()
		if err != nil {
			d.actionErr = err.Error()
		} else {
			d.actionErr = ""
		}
		d.mu.Unlock()
		d.changed()
	}()
}

// WriteAction sends one status write to the backend and journals it. The local
// status is never rolled back on failure; the next refresh that reports a
// terminal state from the backend settles it.
func (d *Dashboard) WriteAction(ctx context.Context, kind ActionKind, id model.AlertID) error {
	var err error
	switch kind {
	case ActionAct:
		err = d.backend.ActOnAlert(ctx, d.userID, id)
	case ActionDismiss:
		err = d.backend.DismissAlert(ctx, d.userID, id)
	default:
		return fmt.Errorf("unknown action %q", kind)
	}
	metrics.AlertActionsTotal.WithLabelValues(string(kind), metrics.Outcome(err)).Inc()

	logEvent := d.logger.Info()
	if err != nil {
		logEvent = d.logger.Error().Err(err)
	}
	logEvent.Str("action", string(kind)).Str("alert_id", string(id)).Msg("alert status write")

	d.journalAction(ctx, kind, id, err)
	if err != nil {
		return fmt.Errorf("%s alert %s: %w", kind, id, err)
	}
	return nil
}

func (d *Dashboard) journalAction(ctx context.Context, kind ActionKind, id model.AlertID, cause error) {
	if d.journal == nil {
		return
	}
	rec := storage.ActionRecord{
		SessionID: d.sessionID,
		UserID:    d.userID,
		AlertID:   string(id),
		Action:    string(kind),
		Succeeded: cause == nil,
	}
	if cause != nil {
		msg := cause.Error()
		rec.Error = &msg
	}
	if _, err := d.journal.RecordAction(ctx, rec); err != nil {
		d.logger.Warn().Err(err).Str("alert_id", string(id)).Msg("journal action")
	}
}
