package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlertDecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": 42,
		"creator_handle": "nabeel.ae",
		"velocity_multiplier": 5.8,
		"views_at_detection": 412000,
		"hours_since_post": 2.4,
		"detected_format": null,
		"alert_headline": "h",
		"alert_body": "b",
		"draft_structure": {"visual_beats": "not a list", "cta": "save this"},
		"urgency": "critical",
		"status": "sent",
		"estimated_peak_hours": null,
		"created_at": "2026-10-19T10:00:00Z"
	}`

	var alert Alert
	require.NoError(t, json.Unmarshal([]byte(payload), &alert))
	require.Equal(t, AlertID("42"), alert.ID)
	require.Equal(t, StatusPending, alert.Status)
	require.Empty(t, alert.DetectedFormat)
	require.Nil(t, alert.EstimatedPeakHours)
	require.NotNil(t, alert.DraftStructure)
	require.Empty(t, alert.DraftStructure.VisualBeats)
	require.Equal(t, "save this", alert.DraftStructure.CTA)
}

func TestAlertIDAcceptsStrings(t *testing.T) {
	var id AlertID
	require.NoError(t, json.Unmarshal([]byte(`"a-1"`), &id))
	require.Equal(t, AlertID("a-1"), id)

	out, err := json.Marshal(AlertID("7"))
	require.NoError(t, err)
	require.Equal(t, "7", string(out))
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"pending":   StatusPending,
		"opened":    StatusPending,
		"expired":   StatusPending,
		"ACTED_ON":  StatusActedOn,
		"dismissed": StatusDismissed,
		"":          StatusPending,
	}
	for raw, want := range cases {
		require.Equal(t, want, ParseStatus(raw), raw)
	}
	require.True(t, StatusDismissed.Terminal())
	require.False(t, StatusPending.Terminal())
}
