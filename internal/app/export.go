package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"spikeradar/internal/model"
)

const (
	chartBarWidth   = 60
	chartBarSpacing = 24
	chartMinWidth   = 640
)

// Export writes the velocity feed as CSV and/or a PNG bar chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxRows = a.Config.ResolveMaxRows(opts.MaxRows)

	remote, err := a.backend()
	if err != nil {
		return err
	}
	feed, err := remote.FetchVelocityFeed(ctx, a.userID())
	if err != nil {
		return err
	}
	if len(feed.Items) == 0 {
		a.Logger.Info().Msg("velocity feed is empty; nothing to export")
		return nil
	}

	items := feed.Items
	if len(items) > opts.MaxRows {
		items = items[:opts.MaxRows]
	}
	a.Logger.Info().Int("total", len(feed.Items)).Int("exported", len(items)).Msg("exporting velocity feed")

	if opts.CSVPath != "" {
		if err := writeFeedCSV(opts.CSVPath, items); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeFeedPNG(opts.PNGPath, items); err != nil {
			return err
		}
	}

	return nil
}

func writeFeedCSV(path string, items []model.VelocityFeedItem) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"creator_handle", "creator_name", "views", "velocity_multiplier", "hours_since_post", "detected_format", "is_spike", "alert_generated", "caption_preview"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, item := range items {
		record := []string{
			item.CreatorHandle,
			item.CreatorName,
			strconv.FormatInt(item.Views, 10),
			formatFloat(item.VelocityMultiplier, 2),
			formatFloat(item.HoursSincePost, 1),
			item.DetectedFormat,
			strconv.FormatBool(item.IsSpike),
			strconv.FormatBool(item.AlertGenerated),
			item.CaptionPreview,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeFeedPNG(path string, items []model.VelocityFeedItem) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	bars := make([]chart.Value, 0, len(items))
	for _, item := range items {
		bars = append(bars, chart.Value{
			Label: "@" + item.CreatorHandle,
			Value: item.VelocityMultiplier,
		})
	}

	width := len(bars)*(chartBarWidth+chartBarSpacing) + 200
	if width < chartMinWidth {
		width = chartMinWidth
	}
	graph := chart.BarChart{
		Title:      "Velocity multiplier by post",
		Width:      width,
		Height:     720,
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name: "Velocity (x baseline)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.1fx")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatFloat(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
