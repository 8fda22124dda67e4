package classify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spikeradar/internal/model"
)

func TestFormatViewsThresholds(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{1250, "1.3k"},
		{99_999, "100.0k"},
		{100_000, "100k"},
		{125_000, "125k"},
		{412_000, "412k"},
		{1_000_000, "1.0M"},
		{1_200_000, "1.2M"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatViews(tc.in), "views %d", tc.in)
	}
}

func TestPeakLabel(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	label, ok := PeakLabel(nil)
	require.False(t, ok)
	require.Empty(t, label)

	label, ok = PeakLabel(ptr(0.5))
	require.True(t, ok)
	require.Equal(t, "Peaking NOW", label)

	label, _ = PeakLabel(ptr(3.8))
	require.Equal(t, "~4h to peak", label)

	label, _ = PeakLabel(ptr(1.5))
	require.Equal(t, "~2h to peak", label)

	label, _ = PeakLabel(ptr(1))
	require.Equal(t, "~1h to peak", label)

	in := 5.2
	first, _ := PeakLabel(&in)
	second, _ := PeakLabel(&in)
	require.Equal(t, first, second)
	require.Equal(t, 5.2, in)
}

func TestClassifyUrgency(t *testing.T) {
	critical := ClassifyUrgency(model.UrgencyCritical)
	high := ClassifyUrgency(model.UrgencyHigh)
	medium := ClassifyUrgency(model.UrgencyMedium)
	low := ClassifyUrgency(model.UrgencyLow)

	require.Equal(t, "WAVE ALERT", critical.Label)
	require.True(t, critical.Pulsing)
	require.True(t, high.Pulsing)
	require.False(t, medium.Pulsing)
	require.Greater(t, critical.Rank, high.Rank)
	require.Greater(t, high.Rank, medium.Rank)
	require.Greater(t, medium.Rank, low.Rank)

	require.Equal(t, low, ClassifyUrgency(""))
	require.Equal(t, low, ClassifyUrgency("apocalyptic"))

	require.True(t, AtLeast(model.UrgencyCritical, model.UrgencyHigh))
	require.False(t, AtLeast(model.UrgencyMedium, model.UrgencyHigh))
}

func TestVelocityBarFractionClamps(t *testing.T) {
	require.InDelta(t, 0.5, VelocityBarFraction(4, 8), 1e-9)
	require.Equal(t, 1.0, VelocityBarFraction(12, 8))
	require.Equal(t, 0.0, VelocityBarFraction(-1, 8))
	require.Equal(t, 1.0, VelocityBarFraction(3, 0))
}

func TestSpikeHeat(t *testing.T) {
	require.Equal(t, HeatNone, SpikeHeat(9, false))
	require.Equal(t, HeatWarm, SpikeHeat(3.9, true))
	require.Equal(t, HeatHot, SpikeHeat(5.8, true))
}

func TestElapsedLabel(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "0m ago", ElapsedLabel(now.Add(time.Minute), now))
	require.Equal(t, "12m ago", ElapsedLabel(now.Add(-12*time.Minute-59*time.Second), now))
	require.Equal(t, "59m ago", ElapsedLabel(now.Add(-59*time.Minute), now))
	require.Equal(t, "1h ago", ElapsedLabel(now.Add(-119*time.Minute), now))
	require.Equal(t, "23h ago", ElapsedLabel(now.Add(-(24*time.Hour - time.Second)), now))
	require.Equal(t, "2d ago", ElapsedLabel(now.Add(-71*time.Hour), now))
}

func TestElapsedLabelMonotonic(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	toMinutes := func(label string) int64 {
		var n int64
		var unit rune
		_, err := fmt.Sscanf(label, "%d%c", &n, &unit)
		require.NoError(t, err)
		switch unit {
		case 'h':
			return n * 60
		case 'd':
			return n * 60 * 24
		default:
			return n
		}
	}

	prev := int64(-1)
	for step := 5000; step >= 0; step -= 7 {
		ts := now.Add(-time.Duration(step) * time.Minute)
		cur := toMinutes(ElapsedLabel(ts, now))
		if prev >= 0 {
			require.LessOrEqual(t, cur, prev, "older timestamp must not read as younger")
		}
		prev = cur
	}
}

func TestFormatMultiplierAndHoursAgo(t *testing.T) {
	require.Equal(t, "5.8x", FormatMultiplier(5.8))
	require.Equal(t, "2.0x", FormatMultiplier(2))
	require.Equal(t, "2h ago", HoursAgo(2.4))
	require.Equal(t, "7h ago", HoursAgo(6.7))
}
