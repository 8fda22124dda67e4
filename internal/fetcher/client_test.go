package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"spikeradar/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: time.Second, UserAgent: "test"}, noopLogger())
}

func TestFetchAlertsSendsFiltersAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/users/7/alerts", r.URL.Path)
		require.Equal(t, "critical", r.URL.Query().Get("urgency"))
		require.Equal(t, "pending", r.URL.Query().Get("status"))
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		require.Equal(t, "test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"alerts": [{"id": 1, "creator_handle": "nabeel.ae", "urgency": "critical", "status": "opened",
			            "velocity_multiplier": 5.8, "views_at_detection": 412000, "hours_since_post": 2.4,
			            "alert_headline": "h", "alert_body": "b", "estimated_peak_hours": 3.8,
			            "created_at": "2026-10-19T10:00:00.123456", "sent_at": null}],
			"total": 4,
			"pending_count": 1
		}`))
	})

	feed, err := client.FetchAlerts(context.Background(), 7, model.AlertQuery{Urgency: model.UrgencyCritical, Status: "pending", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 4, feed.Total)
	require.Equal(t, 1, feed.PendingCount)
	require.Len(t, feed.Alerts, 1)
	alert := feed.Alerts[0]
	require.Equal(t, model.AlertID("1"), alert.ID)
	require.Equal(t, model.StatusPending, alert.Status)
	require.NotNil(t, alert.EstimatedPeakHours)
	require.InDelta(t, 3.8, *alert.EstimatedPeakHours, 1e-9)
	require.True(t, time.Date(2026, 10, 19, 10, 0, 0, 123456000, time.UTC).Equal(alert.CreatedAt))
	require.Nil(t, alert.SentAt)
}

func TestErrorDetailIsSurfacedVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Alert not found"})
	})

	err := client.ActOnAlert(context.Background(), 1, "99")
	require.Error(t, err)
	require.Equal(t, "Alert not found", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestErrorWithoutBodyFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchVelocityFeed(context.Background(), 1)
	require.EqualError(t, err, "Bad Gateway")
}

func TestValidationDetailIsKeptAsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","username"],"msg":"field required"}]}`))
	})

	_, err := client.CreateUser(context.Background(), model.UserCreate{})
	require.EqualError(t, err, `[{"loc":["body","username"],"msg":"field required"}]`)
}

func TestTriggerScan(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/3/scan", r.URL.Path)
		_, _ = w.Write([]byte(`{"posts_scanned": 60, "spikes_detected": 3, "alerts_generated": 2, "alerts": []}`))
	})

	res, err := client.TriggerScan(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, model.ScanResult{PostsScanned: 60, SpikesDetected: 3, AlertsGenerated: 2, Alerts: []model.Alert{}}, res)
}

func TestDismissAndActPaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	require.NoError(t, client.ActOnAlert(context.Background(), 2, "11"))
	require.NoError(t, client.DismissAlert(context.Background(), 2, "12"))
	require.Equal(t, []string{"POST /users/2/alerts/11/act", "POST /users/2/alerts/12/dismiss"}, paths)
}

func TestAccountsEndpoints(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/users/":
			var body model.UserCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "arav", body.Username)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 5, "username": "arav", "notification_enabled": true, "created_at": "2026-10-19T10:00:00Z"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/users/5/creators/":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "nabeel.ae", body["instagram_handle"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 9, "instagram_handle": "nabeel.ae", "is_active": true}`))
		case r.Method == http.MethodGet && r.URL.Path == "/users/5/creators/":
			_, _ = w.Write([]byte(`[{"id": 9, "instagram_handle": "nabeel.ae", "is_active": true}]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/users/5/creators/9":
			_, _ = w.Write([]byte(`{"status": "untracked"}`))
		case r.Method == http.MethodPatch && r.URL.Path == "/users/5/pillars":
			_, _ = w.Write([]byte(`{"id": 5, "username": "arav", "content_pillars": {"primary_narrative": "n", "topics": ["a"], "tone": "", "audience": ""}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	user, err := client.CreateUser(ctx, model.UserCreate{Username: "arav"})
	require.NoError(t, err)
	require.EqualValues(t, 5, user.ID)

	creator, err := client.TrackCreator(ctx, 5, "nabeel.ae")
	require.NoError(t, err)
	require.EqualValues(t, 9, creator.ID)

	creators, err := client.ListCreators(ctx, 5)
	require.NoError(t, err)
	require.Len(t, creators, 1)

	require.NoError(t, client.UntrackCreator(ctx, 5, 9))

	updated, err := client.UpdatePillars(ctx, 5, model.ContentPillars{PrimaryNarrative: "n", Topics: []string{"a"}})
	require.NoError(t, err)
	require.Equal(t, "n", updated.ContentPillars.PrimaryNarrative)

	require.Len(t, seen, 5)
}
