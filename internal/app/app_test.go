package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"spikeradar/internal/config"
)

func newDemoApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Demo.Enabled = true
	cfg.Demo.ScanDelay = 0
	cfg.Database.DSN = ""
	cfg.Cache.Addr = ""

	var out bytes.Buffer
	a := NewApp(cfg, zerolog.Nop())
	a.Out = &out
	return a, &out
}

func TestAlertsListsDemoFixtures(t *testing.T) {
	a, out := newDemoApp(t)
	require.NoError(t, a.Alerts(context.Background(), AlertsOptions{Expand: []string{"1"}}))

	text := out.String()
	require.Contains(t, text, "Active spikes: 3 | Pending: 3 | Total alerts: 3")
	require.Contains(t, text, "! WAVE ALERT")
	require.Contains(t, text, "@nabeel.ae")
	require.Contains(t, text, "~4h to peak")
	require.Contains(t, text, "--- 1: @nabeel.ae (WAVE ALERT) ---")
	require.NotContains(t, text, "--- 2:")
}

func TestAlertsRejectsUnknownUrgency(t *testing.T) {
	a, _ := newDemoApp(t)
	err := a.Alerts(context.Background(), AlertsOptions{Urgency: "urgent"})
	require.Error(t, err)
}

func TestActThenFilterPending(t *testing.T) {
	a, out := newDemoApp(t)
	ctx := context.Background()

	require.NoError(t, a.Act(ctx, "1"))
	require.NoError(t, a.Dismiss(ctx, "3"))
	require.Contains(t, out.String(), "alert 1 acted on")
	require.Contains(t, out.String(), "alert 3 dismissed")

	out.Reset()
	require.NoError(t, a.Alerts(ctx, AlertsOptions{Status: "pending"}))
	text := out.String()
	require.Contains(t, text, "@fashion.ceo")
	require.NotContains(t, text, "@nabeel.ae")
	require.Contains(t, text, "Pending: 1 | Total alerts: 1")

	err := a.Act(ctx, "404")
	require.EqualError(t, err, "act alert 404: Alert not found")
}

func TestScanPrintsSummary(t *testing.T) {
	a, out := newDemoApp(t)
	require.NoError(t, a.Scan(context.Background()))
	require.Contains(t, out.String(), "Scanned 60 posts, 3 spikes detected, 3 alerts generated")
}

func TestFeedHonoursRows(t *testing.T) {
	a, out := newDemoApp(t)
	require.NoError(t, a.Feed(context.Background(), FeedOptions{Rows: 3}))
	text := out.String()
	require.Contains(t, text, "HOT")
	require.Contains(t, text, "412k")
	require.NotContains(t, text, "52h ago")
}

func TestExportWritesCSVAndPNG(t *testing.T) {
	a, _ := newDemoApp(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "feed.csv")
	pngPath := filepath.Join(dir, "out", "feed.png")

	require.NoError(t, a.Export(context.Background(), ExportOptions{CSVPath: csvPath, PNGPath: pngPath, MaxRows: 5}))

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	require.Equal(t, "creator_handle", records[0][0])
	require.Equal(t, []string{"nabeel.ae", "Nabeel Ahmed", "412000", "5.80", "2.4", "FOMO listicle", "true", "true"}, records[1][:8])

	info, err := os.Stat(pngPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	require.Error(t, a.Export(context.Background(), ExportOptions{}))
}

func TestCreateUserTracksCompetitors(t *testing.T) {
	a, out := newDemoApp(t)
	err := a.CreateUser(context.Background(), SetupOptions{
		Username:    "sam",
		Handle:      "@samlifts",
		Narrative:   "Lifting while working full time",
		Topics:      []string{"fitness"},
		Competitors: []string{"@rival.one", "rival.two", "rival.one"},
	})
	require.EqualError(t, err, "1 competitor(s) could not be tracked")

	text := out.String()
	require.Contains(t, text, "created user 2 (sam)")
	require.Contains(t, text, "tracking @rival.one")
	require.Contains(t, text, "tracking @rival.two")
	require.Contains(t, text, "could not track @rival.one: Already tracking this creator")

	require.EqualError(t, a.CreateUser(context.Background(), SetupOptions{}), "--username is required")
}

func TestUserAndCreatorCommands(t *testing.T) {
	a, out := newDemoApp(t)
	ctx := context.Background()

	require.NoError(t, a.ShowUser(ctx))
	require.Contains(t, out.String(), "Balancing CS at Waterloo with my fashion startup")

	require.NoError(t, a.ListCreators(ctx))
	require.Contains(t, out.String(), "@techbro.fits")

	require.NoError(t, a.TrackCreators(ctx, []string{"@newface"}))
	require.NoError(t, a.UntrackCreator(ctx, 1))
	require.Error(t, a.UntrackCreator(ctx, 99))

	out.Reset()
	require.NoError(t, a.ListCreators(ctx))
	require.NotContains(t, out.String(), "@nabeel.ae")
	require.Contains(t, out.String(), "@newface")

	require.NoError(t, a.UpdatePushToken(ctx, "device-token"))
	require.Error(t, a.UpdatePushToken(ctx, " "))
}

func TestHistoryNeedsDatabase(t *testing.T) {
	a, _ := newDemoApp(t)
	require.EqualError(t, a.History(context.Background(), HistoryOptions{Limit: 5}), "database not configured; cannot show history")
	require.EqualError(t, a.Prune(context.Background(), PruneOptions{}), "database not configured; nothing to prune")
}

func TestSimulateAlertSendsTelegramMessage(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		text string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		path = r.URL.Path
		text = payload.Text
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	a, _ := newDemoApp(t)
	require.EqualError(t, a.SimulateAlert(context.Background(), "1"), "alerting is not enabled")

	a.Config.Alerting.Enabled = true
	a.Config.Alerting.Telegram = config.TelegramConfig{Enabled: true, BotToken: "token", ChatID: "42", APIBase: server.URL}
	require.NoError(t, a.SimulateAlert(context.Background(), "2"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/bottoken/sendMessage", path)
	require.True(t, strings.HasPrefix(text, "[TREND SPIKE] @fashion.ceo\n"))
	require.Contains(t, text, "Velocity: 3.9x, 185k views, posted 4h ago")
}
