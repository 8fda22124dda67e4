// Package view renders dashboard state as plain-text tables.
package view

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"spikeradar/internal/classify"
	"spikeradar/internal/model"
	"spikeradar/internal/scan"
	"spikeradar/internal/scheduler"
	"spikeradar/internal/service"
)

const barWidth = 10

// Options tune rendering.
type Options struct {
	Now         time.Time
	VelocityCap float64
	FeedRows    int
}

func (o Options) velocityCap() float64 {
	if o.VelocityCap <= 0 {
		return classify.DefaultBarCap
	}
	return o.VelocityCap
}

// Dashboard renders the full session: header, scan state, alerts and feed.
func Dashboard(w io.Writer, v service.View, opts Options) error {
	Stats(w, v.Stats, opts.Now)
	Scan(w, v.Scan)
	if v.ActionErr != "" {
		fmt.Fprintf(w, "last action failed: %s\n", sanitizeInline(v.ActionErr))
	}
	fmt.Fprintln(w)

	switch {
	case v.AlertsLoading && len(v.Alerts) == 0:
		fmt.Fprintln(w, "loading alerts...")
	case v.AlertsErr != "" && len(v.Alerts) == 0:
		fmt.Fprintf(w, "alerts unavailable: %s\n", sanitizeInline(v.AlertsErr))
	default:
		switch {
		case v.AlertsErr != "" && v.AlertsUpdated.IsZero():
			fmt.Fprintf(w, "refresh failed (%s); showing cached data\n", sanitizeInline(v.AlertsErr))
		case v.AlertsErr != "":
			fmt.Fprintf(w, "refresh failed (%s); showing data from %s\n",
				sanitizeInline(v.AlertsErr), classify.ElapsedLabel(v.AlertsUpdated, opts.Now))
		}
		if err := Alerts(w, v.Alerts, v.Expanded, opts); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return Feed(w, v.Feed, opts)
}

// Stats prints the header counters on one line.
func Stats(w io.Writer, s service.Stats, now time.Time) {
	last := "never"
	if s.LastScanAt != nil {
		last = classify.ElapsedLabel(*s.LastScanAt, now)
	}
	fmt.Fprintf(w, "Active spikes: %d | Pending: %d | Total alerts: %d | Last scan: %s\n",
		s.ActiveSpikes, s.Pending, s.Total, last)
}

// Scan prints the scan workflow line.
func Scan(w io.Writer, snap scan.Snapshot) {
	switch snap.Phase {
	case scan.PhaseScanning:
		fmt.Fprintln(w, "Scanning competitors...")
	case scan.PhaseResult:
		if snap.Failed || snap.Result == nil {
			fmt.Fprintf(w, "Scan failed: %s\n", sanitizeInline(snap.Err))
			return
		}
		fmt.Fprintln(w, ScanSummary(*snap.Result))
	}
}

// ScanSummary phrases a scan outcome.
func ScanSummary(r model.ScanResult) string {
	return fmt.Sprintf("Scanned %d posts, %d spikes detected, %d alerts generated",
		r.PostsScanned, r.SpikesDetected, r.AlertsGenerated)
}

// Alerts prints one row per alert in the given order, followed by the detail
// block of each expanded alert.
func Alerts(w io.Writer, alerts []model.Alert, expanded []model.AlertID, opts Options) error {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "no alerts yet")
		return nil
	}
	open := make(map[model.AlertID]bool, len(expanded))
	for _, id := range expanded {
		open[id] = true
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tTier\tCreator\tVelocity\tViews\tPosted\tPeak\tStatus\tHeadline")
	for _, alert := range alerts {
		peak, _ := classify.PeakLabel(alert.EstimatedPeakHours)
		fmt.Fprintf(writer, "%s\t%s\t@%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			alert.ID,
			TierLabel(alert.Urgency),
			alert.CreatorHandle,
			Bar(classify.VelocityBarFraction(alert.VelocityMultiplier, opts.velocityCap())),
			classify.FormatMultiplier(alert.VelocityMultiplier),
			classify.FormatViews(alert.ViewsAtDetection),
			classify.HoursAgo(alert.HoursSincePost),
			peak,
			StatusLabel(alert.Status),
			sanitizeInline(alert.Headline),
		)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	for _, alert := range alerts {
		if open[alert.ID] {
			Detail(w, alert, opts.Now)
		}
	}
	return nil
}

// Detail prints the rewrite suggestion attached to an alert.
func Detail(w io.Writer, alert model.Alert, now time.Time) {
	fmt.Fprintf(w, "\n--- %s: @%s (%s) ---\n", alert.ID, alert.CreatorHandle, classify.ClassifyUrgency(alert.Urgency).Label)
	if alert.CreatorName != "" {
		fmt.Fprintf(w, "Creator: %s\n", alert.CreatorName)
	}
	fmt.Fprintf(w, "%s\n", alert.Headline)
	if alert.Body != "" {
		fmt.Fprintf(w, "%s\n", alert.Body)
	}
	if alert.DetectedFormat != "" {
		fmt.Fprintf(w, "Format: %s\n", alert.DetectedFormat)
	}
	if !alert.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Detected: %s\n", classify.ElapsedLabel(alert.CreatedAt, now))
	}
	if alert.DraftHook != "" {
		fmt.Fprintf(w, "Hook: %q\n", alert.DraftHook)
	}
	if ds := alert.DraftStructure; ds != nil {
		if len(ds.VisualBeats) > 0 {
			fmt.Fprintln(w, "Beats:")
			for i, beat := range ds.VisualBeats {
				fmt.Fprintf(w, "  %d. %s\n", i+1, beat)
			}
		}
		if ds.FormatBreakdown != "" {
			fmt.Fprintf(w, "Why it works: %s\n", ds.FormatBreakdown)
		}
		if ds.AdaptationNotes != "" {
			fmt.Fprintf(w, "Adapt: %s\n", ds.AdaptationNotes)
		}
		if ds.CaptionDraft != "" {
			fmt.Fprintf(w, "Caption: %s\n", ds.CaptionDraft)
		}
		if ds.CTA != "" {
			fmt.Fprintf(w, "CTA: %s\n", ds.CTA)
		}
	}
	if alert.RewriteRationale != "" {
		fmt.Fprintf(w, "Rationale: %s\n", alert.RewriteRationale)
	}
}

// Feed prints the velocity feed, newest first as delivered.
func Feed(w io.Writer, state scheduler.State[model.VelocityFeed], opts Options) error {
	if !state.HasData {
		if state.Err != "" {
			fmt.Fprintf(w, "velocity feed unavailable: %s\n", sanitizeInline(state.Err))
		} else {
			fmt.Fprintln(w, "loading velocity feed...")
		}
		return nil
	}
	items := state.Data.Items
	if len(items) == 0 {
		fmt.Fprintln(w, "velocity feed is empty")
		return nil
	}
	if opts.FeedRows > 0 && len(items) > opts.FeedRows {
		items = items[:opts.FeedRows]
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Creator\tVelocity\tViews\tPosted\tFormat\tSpike\tCaption")
	for _, item := range items {
		fmt.Fprintf(writer, "@%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			item.CreatorHandle,
			Bar(classify.VelocityBarFraction(item.VelocityMultiplier, opts.velocityCap())),
			classify.FormatMultiplier(item.VelocityMultiplier),
			classify.FormatViews(item.Views),
			classify.HoursAgo(item.HoursSincePost),
			item.DetectedFormat,
			HeatLabel(classify.SpikeHeat(item.VelocityMultiplier, item.IsSpike)),
			truncate(sanitizeInline(item.CaptionPreview), 48),
		)
	}
	return writer.Flush()
}

// TierLabel is the urgency label, marked with "!" for pulsing tiers.
func TierLabel(u model.Urgency) string {
	tier := classify.ClassifyUrgency(u)
	if tier.Pulsing {
		return "! " + tier.Label
	}
	return tier.Label
}

// StatusLabel names a lifecycle status.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusActedOn:
		return "acted on"
	case model.StatusDismissed:
		return "dismissed"
	default:
		return "pending"
	}
}

// HeatLabel names a feed row's emphasis.
func HeatLabel(h classify.Heat) string {
	switch h {
	case classify.HeatHot:
		return "HOT"
	case classify.HeatWarm:
		return "spike"
	default:
		return "-"
	}
}

// Bar draws a fixed-width proportional bar for a fraction in [0, 1].
func Bar(fraction float64) string {
	filled := int(math.Round(fraction * barWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func truncate(v string, n int) string {
	r := []rune(v)
	if len(r) <= n {
		return v
	}
	return string(r[:n-3]) + "..."
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}
