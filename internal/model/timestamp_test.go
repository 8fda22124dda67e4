package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2026-10-19T10:00:00.123456":       time.Date(2026, 10, 19, 10, 0, 0, 123456000, time.UTC),
		"2026-10-19T10:00:00":              time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		"2026-10-19T10:00:00Z":             time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		"2026-10-19T12:00:00.5+02:00":      time.Date(2026, 10, 19, 10, 0, 0, 500000000, time.UTC),
		"2026-10-19T10:00:00.123456+00:00": time.Date(2026, 10, 19, 10, 0, 0, 123456000, time.UTC),
	}
	for raw, want := range cases {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		require.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestAlertFeedDecodesZonelessTimestamps(t *testing.T) {
	payload := `{
		"alerts": [{
			"id": 1,
			"creator_handle": "nabeel.ae",
			"velocity_multiplier": 5.8,
			"views_at_detection": 412000,
			"hours_since_post": 2.4,
			"alert_headline": "h",
			"alert_body": "b",
			"urgency": "critical",
			"status": "sent",
			"created_at": "2026-10-19T10:00:00.123456",
			"sent_at": null
		}, {
			"id": 2,
			"creator_handle": "fashion.ceo",
			"velocity_multiplier": 3.9,
			"views_at_detection": 185000,
			"hours_since_post": 4.1,
			"alert_headline": "h",
			"alert_body": "b",
			"urgency": "high",
			"status": "acted_on",
			"created_at": "2026-10-19T09:30:00",
			"sent_at": "2026-10-19T09:31:02.5"
		}],
		"total": 2,
		"pending_count": 1
	}`

	var feed AlertFeed
	require.NoError(t, json.Unmarshal([]byte(payload), &feed))
	require.Len(t, feed.Alerts, 2)

	first := feed.Alerts[0]
	require.Equal(t, AlertID("1"), first.ID)
	require.Equal(t, StatusPending, first.Status)
	require.True(t, time.Date(2026, 10, 19, 10, 0, 0, 123456000, time.UTC).Equal(first.CreatedAt))
	require.Nil(t, first.SentAt)

	second := feed.Alerts[1]
	require.Equal(t, StatusActedOn, second.Status)
	require.Equal(t, 185000, int(second.ViewsAtDetection))
	require.NotNil(t, second.SentAt)
	require.True(t, time.Date(2026, 10, 19, 9, 31, 2, 500000000, time.UTC).Equal(*second.SentAt))
}

func TestVelocityFeedAndAccountsDecodeZonelessTimestamps(t *testing.T) {
	var feed VelocityFeed
	require.NoError(t, json.Unmarshal([]byte(`{
		"items": [{"creator_handle": "techbro.fits", "views": 3400, "velocity_multiplier": 1.2, "hours_since_post": 6, "is_spike": false, "alert_generated": false}],
		"spike_count": 0,
		"last_scan_at": "2026-10-19T08:00:00.000001"
	}`), &feed))
	require.Len(t, feed.Items, 1)
	require.NotNil(t, feed.LastScanAt)
	require.True(t, time.Date(2026, 10, 19, 8, 0, 0, 1000, time.UTC).Equal(*feed.LastScanAt))

	var empty VelocityFeed
	require.NoError(t, json.Unmarshal([]byte(`{"items": [], "spike_count": 0, "last_scan_at": null}`), &empty))
	require.Nil(t, empty.LastScanAt)

	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "username": "arav", "instagram_handle": null, "niche_tags": [], "notification_enabled": true, "created_at": "2026-10-01T12:00:00.654321"}`), &user))
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, "arav", user.Username)
	require.True(t, time.Date(2026, 10, 1, 12, 0, 0, 654321000, time.UTC).Equal(user.CreatedAt))

	var creator TrackedCreator
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "instagram_handle": "nabeel.ae", "last_scraped_at": "2026-10-19T07:45:00", "is_active": true}`), &creator))
	require.Equal(t, "nabeel.ae", creator.InstagramHandle)
	require.NotNil(t, creator.LastScrapedAt)
	require.True(t, creator.IsActive)
}

func TestAlertRoundTripsThroughRFC3339(t *testing.T) {
	sent := time.Date(2026, 10, 19, 10, 5, 0, 0, time.UTC)
	in := Alert{ID: "9", CreatorHandle: "c", Urgency: UrgencyLow, Status: StatusDismissed,
		CreatedAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), SentAt: &sent}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Alert
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in.ID, out.ID)
	require.Equal(t, StatusDismissed, out.Status)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.True(t, sent.Equal(*out.SentAt))
}
