package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestServerExposesMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg)

	PendingAlerts.Set(3)
	ObserveRequest("fetch_alerts", nil, 20*time.Millisecond)
	ObserveRequest("fetch_alerts", errors.New("boom"), 20*time.Millisecond)

	srv := NewServer(zerolog.Nop(), reg, func() map[string]any {
		return map[string]any{"pending_alerts": 3}
	})

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "spikeradar_pending_alerts 3"))
	require.True(t, strings.Contains(body, `spikeradar_backend_request_duration_seconds_count{operation="fetch_alerts",status="error"} 1`))

	rec = httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","pending_alerts":3}`, rec.Body.String())
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "error", Outcome(errors.New("x")))

	before := testutil.ToFloat64(ScansTotal.WithLabelValues("ok"))
	ScansTotal.WithLabelValues("ok").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(ScansTotal.WithLabelValues("ok")))
}
