package demo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"spikeradar/internal/clock"
	"spikeradar/internal/fetcher"
	"spikeradar/internal/model"
)

func newBackend(t *testing.T) (*Backend, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	b, err := New(Options{ScanDelay: DefaultScanDelay, Clock: clk}, zerolog.Nop())
	require.NoError(t, err)
	return b, clk
}

func TestFixturesLoad(t *testing.T) {
	b, clk := newBackend(t)
	ctx := context.Background()

	feed, err := b.FetchAlerts(ctx, UserID, model.AlertQuery{})
	require.NoError(t, err)
	require.Len(t, feed.Alerts, 3)
	require.Equal(t, 3, feed.PendingCount)
	require.Equal(t, model.AlertID("1"), feed.Alerts[0].ID, "newest first")
	require.Equal(t, model.UrgencyCritical, feed.Alerts[0].Urgency)
	require.Equal(t, clk.Now().Add(-12*time.Minute), feed.Alerts[0].CreatedAt)
	require.Len(t, feed.Alerts[0].DraftStructure.VisualBeats, 5)
	require.Equal(t, 3.8, *feed.Alerts[0].EstimatedPeakHours)

	velocity, err := b.FetchVelocityFeed(ctx, UserID)
	require.NoError(t, err)
	require.Len(t, velocity.Items, 9)
	require.Equal(t, 3, velocity.SpikeCount)
	require.Nil(t, velocity.LastScanAt)
}

func TestFilteringAndLimit(t *testing.T) {
	b, _ := newBackend(t)
	ctx := context.Background()

	feed, err := b.FetchAlerts(ctx, UserID, model.AlertQuery{Urgency: model.UrgencyHigh})
	require.NoError(t, err)
	require.Len(t, feed.Alerts, 1)
	require.Equal(t, "fashion.ceo", feed.Alerts[0].CreatorHandle)
	require.Equal(t, 3, feed.Total)

	feed, err = b.FetchAlerts(ctx, UserID, model.AlertQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, feed.Alerts, 2)

	_, err = b.FetchAlerts(ctx, UserID, model.AlertQuery{Limit: 101})
	var apiErr *fetcher.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestActAndDismiss(t *testing.T) {
	b, _ := newBackend(t)
	ctx := context.Background()

	require.NoError(t, b.ActOnAlert(ctx, UserID, "1"))
	require.NoError(t, b.DismissAlert(ctx, UserID, "3"))
	require.EqualError(t, b.ActOnAlert(ctx, UserID, "99"), "Alert not found")

	feed, err := b.FetchAlerts(ctx, UserID, model.AlertQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, feed.Alerts, 1)
	require.Equal(t, 1, feed.PendingCount)

	alert, err := b.FetchAlert(ctx, UserID, "1")
	require.NoError(t, err)
	require.Equal(t, model.StatusActedOn, alert.Status)
}

func TestScanWaitsForDelay(t *testing.T) {
	b, clk := newBackend(t)

	type outcome struct {
		result model.ScanResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := b.TriggerScan(context.Background(), UserID)
		done <- outcome{res, err}
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(2 * time.Second)
	select {
	case <-done:
		t.Fatal("scan finished before the simulated delay")
	default:
	}

	clk.Advance(200 * time.Millisecond)
	out := <-done
	require.NoError(t, out.err)
	require.Equal(t, model.ScanResult{PostsScanned: 60, SpikesDetected: 3, AlertsGenerated: 3}, out.result)

	velocity, err := b.FetchVelocityFeed(context.Background(), UserID)
	require.NoError(t, err)
	require.NotNil(t, velocity.LastScanAt)
	require.Equal(t, clk.Now(), *velocity.LastScanAt)
}

func TestScanHonoursCancellation(t *testing.T) {
	b, clk := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := b.TriggerScan(ctx, UserID)
		done <- err
	}()
	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Zero(t, clk.Pending())
}

func TestAccountsSetupFlow(t *testing.T) {
	b, _ := newBackend(t)
	ctx := context.Background()

	handle := "newcreator"
	user, err := b.CreateUser(ctx, model.UserCreate{Username: "sam", InstagramHandle: &handle})
	require.NoError(t, err)
	require.Equal(t, int64(2), user.ID)
	require.NotNil(t, user.NicheTags)

	_, err = b.CreateUser(ctx, model.UserCreate{Username: "sam"})
	require.EqualError(t, err, "Username already exists")

	_, err = b.TriggerScan(ctx, user.ID)
	require.EqualError(t, err, "No tracked creators")

	creator, err := b.TrackCreator(ctx, user.ID, "@rival")
	require.NoError(t, err)
	require.Equal(t, "rival", creator.InstagramHandle)
	_, err = b.TrackCreator(ctx, user.ID, "rival")
	require.EqualError(t, err, "Already tracking this creator")

	list, err := b.ListCreators(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, b.UntrackCreator(ctx, user.ID, creator.ID))
	list, err = b.ListCreators(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	require.EqualError(t, b.UntrackCreator(ctx, user.ID, 999), "Creator not found")

	updated, err := b.UpdatePillars(ctx, user.ID, model.ContentPillars{PrimaryNarrative: "lifting", Topics: []string{"gym"}})
	require.NoError(t, err)
	require.Equal(t, "lifting", updated.ContentPillars.PrimaryNarrative)

	require.NoError(t, b.UpdatePushToken(ctx, user.ID, "tok"))
	require.EqualError(t, b.UpdatePushToken(ctx, 42, "tok"), "User not found")

	_, err = b.GetUser(ctx, 42)
	require.EqualError(t, err, "User not found")
}
