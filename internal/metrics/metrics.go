package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BackendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spikeradar_backend_request_duration_seconds",
		Help:    "Latency of backend API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	PollsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spikeradar_polls_total",
		Help: "Completed refreshes by resource and outcome",
	}, []string{"resource", "status"})

	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spikeradar_scans_total",
		Help: "On-demand scans by outcome",
	}, []string{"status"})

	AlertActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spikeradar_alert_actions_total",
		Help: "Act/dismiss writes to the backend by outcome",
	}, []string{"action", "status"})

	PendingAlerts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spikeradar_pending_alerts",
		Help: "Alerts currently pending in the session",
	})

	ActiveSpikes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spikeradar_active_spikes",
		Help: "Spiking posts in the latest velocity feed",
	})

	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spikeradar_notifications_total",
		Help: "Spike notifications by outcome",
	}, []string{"status"})
)

// MustRegister registers all collectors.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		BackendRequestDuration,
		PollsTotal,
		ScansTotal,
		AlertActionsTotal,
		PendingAlerts,
		ActiveSpikes,
		NotificationsTotal,
	)
}

// ObserveRequest records one backend call.
func ObserveRequest(operation string, err error, took time.Duration) {
	BackendRequestDuration.WithLabelValues(operation, Outcome(err)).Observe(took.Seconds())
}

// Outcome maps an error onto a status label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
