package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// History prints the most recent alert actions and scans from the journal.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	actions, err := store.ListRecentActions(ctx, a.userID(), opts.Limit)
	if err != nil {
		return err
	}
	scans, err := store.ListRecentScans(ctx, a.userID(), opts.Limit)
	if err != nil {
		return err
	}

	if len(actions) == 0 {
		fmt.Fprintln(a.Out, "no alert actions recorded")
	} else {
		writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Time (UTC)\tAlert\tAction\tOK\tSession\tError")
		for _, rec := range actions {
			errMsg := ""
			if rec.Error != nil {
				errMsg = sanitizeInline(*rec.Error)
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%t\t%s\t%s\n",
				rec.CreatedAt.UTC().Format(time.RFC3339),
				rec.AlertID,
				rec.Action,
				rec.Succeeded,
				shortID(rec.SessionID.String()),
				errMsg,
			)
		}
		writer.Flush()
	}

	fmt.Fprintln(a.Out)
	if len(scans) == 0 {
		fmt.Fprintln(a.Out, "no scans recorded")
		return nil
	}
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tPosts\tSpikes\tAlerts\tSession\tError")
	for _, rec := range scans {
		errMsg := ""
		if rec.Error != nil {
			errMsg = sanitizeInline(*rec.Error)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(rec.PostsScanned),
			strconv.Itoa(rec.SpikesDetected),
			strconv.Itoa(rec.AlertsGenerated),
			shortID(rec.SessionID.String()),
			errMsg,
		)
	}
	return writer.Flush()
}

// Prune deletes journal rows older than the retention window.
func (a *App) Prune(ctx context.Context, opts PruneOptions) error {
	retention := opts.OlderThan
	if retention <= 0 {
		retention = a.Config.Database.Retention
	}
	if retention <= 0 {
		return errors.New("retention must be greater than zero")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; nothing to prune")
	}
	if closeStore != nil {
		defer closeStore()
	}

	cutoff := time.Now().UTC().Add(-retention)
	actions, err := store.DeleteActionsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	scans, err := store.DeleteScansBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Time("cutoff", cutoff).
		Int64("actions", actions).
		Int64("scans", scans).
		Msg("journal pruned")
	fmt.Fprintf(a.Out, "pruned %d actions and %d scans older than %s\n", actions, scans, cutoff.Format(time.RFC3339))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
